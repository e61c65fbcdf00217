package model

// MediaAsset is the uniform shape for any image/video/audio asset attached to
// a result, regardless of whether the provider returned inline base64, a
// remote URL, or a frame sequence.
type MediaAsset struct {
	Kind            string   `json:"kind"` // image, video, audio
	URL             string   `json:"url,omitempty"`
	Data            string   `json:"data,omitempty"` // inline base64
	MimeType        string   `json:"mime_type,omitempty"`
	Caption         string   `json:"caption,omitempty"`
	Poster          string   `json:"poster,omitempty"`
	Frames          []string `json:"frames,omitempty"`
	DurationSeconds float64  `json:"duration_seconds,omitempty"`
	FrameRate       float64  `json:"frame_rate,omitempty"`
}
