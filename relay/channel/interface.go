package channel

import (
	"context"
	"io"
	"net/http"

	"github.com/prismstudio/director-core/relay/model"
)

// Meta carries everything an adaptor needs for one outbound call.
type Meta struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	RequestId string
}

// Adaptor is the narrow capability contract for a provider backend: convert
// an instruction pair into the provider's wire shape, send it, and hand back
// the decoded payload plus its best-effort text.
type Adaptor interface {
	Init(meta *Meta)
	GetRequestURL(meta *Meta) (string, error)
	SetupRequestHeader(req *http.Request, meta *Meta) error
	ConvertRequest(system string, user string, images []model.InlineImage) (any, error)
	DoRequest(ctx context.Context, meta *Meta, requestBody io.Reader) (*http.Response, error)
	// ParseResponse returns the decoded JSON payload (for the normalizer
	// chain) and the flattened reply text. Non-2xx turns into a provider
	// error carrying the upstream status code.
	ParseResponse(resp *http.Response) (raw any, text string, errResp *model.ErrorWithStatusCode)
	GetModelList() []string
	GetChannelName() string
}
