package adaptor

import (
	"context"
	"strings"

	"github.com/prismstudio/director-core/common/logger"
	"github.com/prismstudio/director-core/common/storage"
	"github.com/prismstudio/director-core/relay/model"
)

// collectMedia walks the raw payload for anything media-shaped and normalizes
// each hit into one MediaAsset record.
func collectMedia(raw any) []model.MediaAsset {
	var assets []model.MediaAsset
	walkMedia(raw, &assets)
	return assets
}

func walkMedia(raw any, assets *[]model.MediaAsset) {
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			walkMedia(item, assets)
		}
	case map[string]any:
		if asset, ok := assetFromObject(v); ok {
			*assets = append(*assets, asset)
			return
		}
		for _, value := range v {
			walkMedia(value, assets)
		}
	}
}

// assetFromObject recognizes the media shapes providers actually emit:
// inlineData (base64), a url/videoUrl field, a b64_json field, or a frame
// list.
func assetFromObject(obj map[string]any) (model.MediaAsset, bool) {
	asset := model.MediaAsset{}

	if inline, ok := obj["inlineData"].(map[string]any); ok {
		asset.MimeType, _ = inline["mimeType"].(string)
		asset.Data, _ = inline["data"].(string)
		if asset.Data != "" {
			asset.Kind = kindFromMime(asset.MimeType)
			asset.Caption, _ = obj["caption"].(string)
			return fillDuration(asset, obj), true
		}
	}

	for _, urlKey := range []string{"url", "videoUrl", "video_url", "imageUrl", "image_url"} {
		if u, ok := obj[urlKey].(string); ok && u != "" {
			asset.URL = u
			asset.MimeType, _ = obj["mime_type"].(string)
			if asset.MimeType == "" {
				asset.MimeType, _ = obj["mimeType"].(string)
			}
			asset.Kind = kindFromMime(asset.MimeType)
			if asset.Kind == "" {
				asset.Kind = kindFromURLKey(urlKey)
			}
			asset.Caption, _ = obj["caption"].(string)
			asset.Poster, _ = obj["poster"].(string)
			return fillDuration(asset, obj), true
		}
	}

	if b64, ok := obj["b64_json"].(string); ok && b64 != "" {
		asset.Data = b64
		asset.MimeType = "image/png"
		asset.Kind = "image"
		asset.Caption, _ = obj["caption"].(string)
		return asset, true
	}

	if framesRaw, ok := obj["frames"].([]any); ok && len(framesRaw) > 0 {
		for _, f := range framesRaw {
			if s, ok := f.(string); ok {
				asset.Frames = append(asset.Frames, s)
			}
		}
		if len(asset.Frames) > 0 {
			asset.Kind = "video"
			asset.MimeType, _ = obj["mime_type"].(string)
			asset.Caption, _ = obj["caption"].(string)
			return fillDuration(asset, obj), true
		}
	}
	return model.MediaAsset{}, false
}

// fillDuration copies duration/frame-rate hints and derives duration from
// frameCount/frameRate when the provider gave both but no explicit duration.
func fillDuration(asset model.MediaAsset, obj map[string]any) model.MediaAsset {
	if d, ok := obj["duration_seconds"].(float64); ok {
		asset.DurationSeconds = d
	} else if d, ok := obj["duration"].(float64); ok {
		asset.DurationSeconds = d
	}
	if r, ok := obj["frame_rate"].(float64); ok {
		asset.FrameRate = r
	} else if r, ok := obj["frameRate"].(float64); ok {
		asset.FrameRate = r
	}
	if asset.DurationSeconds == 0 && asset.FrameRate > 0 {
		frameCount := float64(len(asset.Frames))
		if fc, ok := obj["frame_count"].(float64); ok {
			frameCount = fc
		}
		if frameCount > 0 {
			asset.DurationSeconds = frameCount / asset.FrameRate
		}
	}
	return asset
}

func kindFromMime(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	default:
		return ""
	}
}

func kindFromURLKey(urlKey string) string {
	if strings.Contains(strings.ToLower(urlKey), "video") {
		return "video"
	}
	return "image"
}

// OffloadInlineMedia uploads inline base64 assets to R2 and swaps them for
// public URLs. Best-effort: a failed upload leaves the inline data in place.
func OffloadInlineMedia(ctx context.Context, assets []model.MediaAsset) []model.MediaAsset {
	if !storage.Enabled() {
		return assets
	}
	for i := range assets {
		if assets[i].Data == "" || assets[i].URL != "" {
			continue
		}
		url, err := storage.UploadMedia(ctx, assets[i].Data, assets[i].MimeType)
		if err != nil {
			logger.Warnf(ctx, "media offload failed, keeping inline data: %s", err.Error())
			continue
		}
		assets[i].URL = url
		assets[i].Data = ""
	}
	return assets
}
