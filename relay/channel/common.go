package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prismstudio/director-core/common/env"
	"github.com/prismstudio/director-core/relay/model"
)

// HTTPClient is shared by every adaptor. The timeout is the only cancellation
// a provider call gets besides the request context.
var HTTPClient = &http.Client{
	Timeout: time.Duration(env.Int("RELAY_TIMEOUT_SECONDS", 120)) * time.Second,
}

// DoRequestHelper builds and sends the outbound request for an adaptor.
func DoRequestHelper(a Adaptor, ctx context.Context, meta *Meta, requestBody io.Reader) (*http.Response, error) {
	fullRequestURL, err := a.GetRequestURL(meta)
	if err != nil {
		return nil, fmt.Errorf("get request url failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullRequestURL, requestBody)
	if err != nil {
		return nil, fmt.Errorf("new request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if err = a.SetupRequestHeader(req, meta); err != nil {
		return nil, fmt.Errorf("setup request header failed: %w", err)
	}
	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ReadResponseBody drains and closes the upstream body.
func ReadResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// UpstreamError turns a non-2xx upstream reply into a provider error, lifting
// the message out of the usual {"error": {"message": ...}} envelope when the
// body carries one.
func UpstreamError(provider string, statusCode int, body []byte) *model.ErrorWithStatusCode {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		message = envelope.Error.Message
		if message == "" {
			message = envelope.Message
		}
	}
	if message == "" {
		message = fmt.Sprintf("upstream returned status %d", statusCode)
	}
	return model.NewProviderError(provider, statusCode, message)
}

// CallText runs one full adaptor round trip: convert, send, parse. The raw
// decoded payload feeds the normalizer chain; text is the flattened reply.
func CallText(ctx context.Context, a Adaptor, meta *Meta, system string, user string, images []model.InlineImage) (any, string, *model.ErrorWithStatusCode) {
	a.Init(meta)
	converted, err := a.ConvertRequest(system, user, images)
	if err != nil {
		return nil, "", model.NewProviderError(meta.Provider, http.StatusInternalServerError,
			fmt.Sprintf("convert request failed: %s", err.Error()))
	}
	payload, err := json.Marshal(converted)
	if err != nil {
		return nil, "", model.NewProviderError(meta.Provider, http.StatusInternalServerError,
			fmt.Sprintf("marshal request failed: %s", err.Error()))
	}
	resp, err := a.DoRequest(ctx, meta, bytes.NewReader(payload))
	if err != nil {
		return nil, "", model.NewProviderError(meta.Provider, 0, err.Error())
	}
	return a.ParseResponse(resp)
}
