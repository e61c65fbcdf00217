package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prismstudio/director-core/relay/channel"
	"github.com/prismstudio/director-core/relay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallTextRoundTrip(t *testing.T) {
	var gotPath, gotKey string
	var gotRequest ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{
					map[string]any{"text": "Summary: a quiet alley at night."},
				}}},
			},
		})
	}))
	defer server.Close()

	a := &Adaptor{}
	meta := &channel.Meta{Provider: model.ProviderGemini, APIKey: "test-key", BaseURL: server.URL}
	raw, text, errResp := channel.CallText(context.Background(), a, meta, "system text", "user text", nil)
	require.Nil(t, errResp)

	assert.Equal(t, "/v1beta/models/"+DefaultModel+":generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotRequest.Contents, 1)
	assert.Equal(t, "user text", gotRequest.Contents[0].Parts[0].Text)
	require.NotNil(t, gotRequest.SystemInstruction)
	assert.Equal(t, "system text", gotRequest.SystemInstruction.Parts[0].Text)

	assert.Equal(t, "Summary: a quiet alley at night.", text)
	assert.NotNil(t, raw)
}

func TestCallTextInlineImage(t *testing.T) {
	var gotRequest ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": "ok"}}}},
			},
		})
	}))
	defer server.Close()

	// 1x1 transparent png.
	dataURL := "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
	a := &Adaptor{}
	meta := &channel.Meta{Provider: model.ProviderGemini, APIKey: "k", BaseURL: server.URL}
	_, _, errResp := channel.CallText(context.Background(), a, meta, "", "describe", []model.InlineImage{{DataURL: dataURL}})
	require.Nil(t, errResp)

	require.Len(t, gotRequest.Contents[0].Parts, 2)
	inline := gotRequest.Contents[0].Parts[1].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "image/png", inline.MimeType)
	assert.NotEmpty(t, inline.Data)
}

func TestCallTextUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer server.Close()

	a := &Adaptor{}
	meta := &channel.Meta{Provider: model.ProviderGemini, APIKey: "k", BaseURL: server.URL}
	_, _, errResp := channel.CallText(context.Background(), a, meta, "s", "u", nil)
	require.NotNil(t, errResp)
	assert.Equal(t, http.StatusTooManyRequests, errResp.StatusCode)
	assert.Equal(t, model.ErrorTypeProvider, errResp.Type)
	assert.Equal(t, "quota exceeded", errResp.Message)
	assert.True(t, errResp.Retryable())
}

func TestCallTextNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	a := &Adaptor{}
	meta := &channel.Meta{Provider: model.ProviderGemini, APIKey: "k", BaseURL: server.URL}
	_, _, errResp := channel.CallText(context.Background(), a, meta, "s", "u", nil)
	require.NotNil(t, errResp)
	assert.Equal(t, model.ErrorTypeMalformedResponse, errResp.Type)
}
