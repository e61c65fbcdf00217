package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/prismstudio/director-core/common/config"
	"github.com/prismstudio/director-core/common/image"
	"github.com/prismstudio/director-core/relay/channel"
	"github.com/prismstudio/director-core/relay/model"
)

type Adaptor struct{}

func (a *Adaptor) Init(meta *channel.Meta) {
	if meta.BaseURL == "" {
		meta.BaseURL = DefaultBaseURL
	}
	if meta.Model == "" {
		meta.Model = DefaultModel
	}
}

func (a *Adaptor) GetRequestURL(meta *channel.Meta) (string, error) {
	return fmt.Sprintf("%s/%s/models/%s:generateContent", meta.BaseURL, config.GeminiVersion, meta.Model), nil
}

func (a *Adaptor) SetupRequestHeader(req *http.Request, meta *channel.Meta) error {
	req.Header.Set("x-goog-api-key", meta.APIKey)
	return nil
}

func (a *Adaptor) ConvertRequest(system string, user string, images []model.InlineImage) (any, error) {
	parts := []Part{{Text: user}}
	for _, img := range images {
		mimeType, data, err := image.ParseDataURL(img.DataURL)
		if err != nil {
			return nil, fmt.Errorf("inline image: %w", err)
		}
		parts = append(parts, Part{InlineData: &InlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		}})
	}
	request := ChatRequest{
		Contents: []Content{{Role: "user", Parts: parts}},
	}
	if system != "" {
		request.SystemInstruction = &Content{Parts: []Part{{Text: system}}}
	}
	for _, category := range []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	} {
		request.SafetySettings = append(request.SafetySettings, SafetySetting{
			Category:  category,
			Threshold: config.GeminiSafetySetting,
		})
	}
	return request, nil
}

func (a *Adaptor) DoRequest(ctx context.Context, meta *channel.Meta, requestBody io.Reader) (*http.Response, error) {
	return channel.DoRequestHelper(a, ctx, meta, requestBody)
}

func (a *Adaptor) ParseResponse(resp *http.Response) (any, string, *model.ErrorWithStatusCode) {
	body, err := channel.ReadResponseBody(resp)
	if err != nil {
		return nil, "", model.NewProviderError(model.ProviderGemini, 0, err.Error())
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", channel.UpstreamError(model.ProviderGemini, resp.StatusCode, body)
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", model.NewMalformedResponseError(model.ProviderGemini, "reply is not valid JSON")
	}
	var chatResponse ChatResponse
	if err := json.Unmarshal(body, &chatResponse); err != nil || len(chatResponse.Candidates) == 0 {
		return nil, "", model.NewMalformedResponseError(model.ProviderGemini, "reply carries no candidates")
	}
	return raw, chatResponse.Text(), nil
}

func (a *Adaptor) GetModelList() []string {
	return ModelList
}

func (a *Adaptor) GetChannelName() string {
	return "google gemini"
}
