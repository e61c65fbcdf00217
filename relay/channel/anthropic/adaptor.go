package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/prismstudio/director-core/common/image"
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
	return fmt.Sprintf("%s/v1/messages", meta.BaseURL), nil
}

func (a *Adaptor) SetupRequestHeader(req *http.Request, meta *channel.Meta) error {
	req.Header.Set("x-api-key", meta.APIKey)
	req.Header.Set("anthropic-version", APIVersion)
	return nil
}

func (a *Adaptor) ConvertRequest(system string, user string, images []model.InlineImage) (any, error) {
	blocks := []ContentBlock{{Type: "text", Text: user}}
	for _, img := range images {
		mimeType, data, err := image.ParseDataURL(img.DataURL)
		if err != nil {
			return nil, fmt.Errorf("inline image: %w", err)
		}
		blocks = append(blocks, ContentBlock{
			Type: "image",
			Source: &ImageSource{
				Type:      "base64",
				MediaType: mimeType,
				Data:      base64.StdEncoding.EncodeToString(data),
			},
		})
	}
	modelName := DefaultModel
	if a.meta != nil && a.meta.Model != "" {
		modelName = a.meta.Model
	}
	return MessagesRequest{
		Model:     modelName,
		System:    system,
		Messages:  []Message{{Role: "user", Content: blocks}},
		MaxTokens: defaultMaxTokens,
	}, nil
}

func (a *Adaptor) DoRequest(ctx context.Context, meta *channel.Meta, requestBody io.Reader) (*http.Response, error) {
	return channel.DoRequestHelper(a, ctx, meta, requestBody)
}

func (a *Adaptor) ParseResponse(resp *http.Response) (any, string, *model.ErrorWithStatusCode) {
	body, err := channel.ReadResponseBody(resp)
	if err != nil {
		return nil, "", model.NewProviderError(model.ProviderAnthropic, 0, err.Error())
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", channel.UpstreamError(model.ProviderAnthropic, resp.StatusCode, body)
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", model.NewMalformedResponseError(model.ProviderAnthropic, "reply is not valid JSON")
	}
	var messagesResponse MessagesResponse
	if err := json.Unmarshal(body, &messagesResponse); err != nil || len(messagesResponse.Content) == 0 {
		return nil, "", model.NewMalformedResponseError(model.ProviderAnthropic, "reply carries no content blocks")
	}
	return raw, messagesResponse.Text(), nil
}

func (a *Adaptor) GetModelList() []string {
	return ModelList
}

func (a *Adaptor) GetChannelName() string {
	return "anthropic"
}
