package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/prismstudio/director-core/relay/channel"
	"github.com/prismstudio/director-core/relay/model"
)

type Adaptor struct {
	meta *channel.Meta
}

func (a *Adaptor) Init(meta *channel.Meta) {
	if meta.BaseURL == "" {
		meta.BaseURL = DefaultBaseURL
	}
	if meta.Model == "" {
		meta.Model = DefaultModel
	}
	a.meta = meta
}

func (a *Adaptor) GetRequestURL(meta *channel.Meta) (string, error) {
	return fmt.Sprintf("%s/v1/chat/completions", meta.BaseURL), nil
}

func (a *Adaptor) SetupRequestHeader(req *http.Request, meta *channel.Meta) error {
	req.Header.Set("Authorization", "Bearer "+meta.APIKey)
	return nil
}

func (a *Adaptor) ConvertRequest(system string, user string, images []model.InlineImage) (any, error) {
	var messages []Message
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	if len(images) == 0 {
		messages = append(messages, Message{Role: "user", Content: user})
	} else {
		parts := []ContentPart{{Type: "text", Text: user}}
		for _, img := range images {
			parts = append(parts, ContentPart{
				Type:     "image_url",
				ImageURL: &ImageURL{URL: img.DataURL},
			})
		}
		messages = append(messages, Message{Role: "user", Content: parts})
	}
	modelName := DefaultModel
	if a.meta != nil && a.meta.Model != "" {
		modelName = a.meta.Model
	}
	return ChatRequest{Model: modelName, Messages: messages}, nil
}

func (a *Adaptor) DoRequest(ctx context.Context, meta *channel.Meta, requestBody io.Reader) (*http.Response, error) {
	return channel.DoRequestHelper(a, ctx, meta, requestBody)
}

func (a *Adaptor) ParseResponse(resp *http.Response) (any, string, *model.ErrorWithStatusCode) {
	body, err := channel.ReadResponseBody(resp)
	if err != nil {
		return nil, "", model.NewProviderError(model.ProviderOpenAI, 0, err.Error())
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", channel.UpstreamError(model.ProviderOpenAI, resp.StatusCode, body)
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", model.NewMalformedResponseError(model.ProviderOpenAI, "reply is not valid JSON")
	}
	var chatResponse ChatResponse
	if err := json.Unmarshal(body, &chatResponse); err != nil || len(chatResponse.Choices) == 0 {
		return nil, "", model.NewMalformedResponseError(model.ProviderOpenAI, "reply carries no choices")
	}
	return raw, chatResponse.Text(), nil
}

func (a *Adaptor) GetModelList() []string {
	return ModelList
}

func (a *Adaptor) GetChannelName() string {
	return "openai"
}
