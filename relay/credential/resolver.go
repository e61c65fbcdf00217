package credential

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/prismstudio/director-core/common/config"
	"github.com/prismstudio/director-core/relay/model"
)

// Source labels where a key was found, for logging only — never echoed to
// clients alongside the key.
const (
	SourceProviderHeader = "provider_header"
	SourceGenericHeader  = "generic_header"
	SourceBodyDirect     = "body_direct"
	SourceBodyKeys       = "body_provider_keys"
	SourceBodyProvider   = "body_provider_object"
	SourceServerEnv      = "server_env"
)

// Resolved is one provider credential plus its provenance.
type Resolved struct {
	Provider string
	Key      string
	Source   string
}

func providerHeaderName(provider string) string {
	// X-Gemini-Api-Key, X-Openai-Api-Key, X-Anthropic-Api-Key; Header.Get
	// canonicalizes case.
	return fmt.Sprintf("X-%s-Api-Key", provider)
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

func fromBodyMap(body map[string]any, objectKey string, field string) string {
	obj, ok := body[objectKey].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := obj[field].(string)
	return s
}

// Resolve locates at most one API key for the provider using the fixed
// precedence: single-purpose header, generic header, body-level field, nested
// providerKeys object, nested provider object, then the server policy. The
// first non-empty post-trim match wins; sources are never merged.
func Resolve(header http.Header, body map[string]any, provider string, policy *config.ServerPolicy) (*Resolved, *model.ErrorWithStatusCode) {
	candidates := []struct {
		source string
		value  string
	}{
		{SourceProviderHeader, header.Get(providerHeaderName(provider))},
		{SourceGenericHeader, genericHeaderKey(header)},
		{SourceBodyDirect, stringFromBody(body, "api_key")},
		{SourceBodyKeys, fromBodyMap(body, "providerKeys", provider)},
		{SourceBodyProvider, fromBodyMap(body, "provider", "apiKey")},
		{SourceServerEnv, policy.ServerKey(provider)},
	}
	for _, cand := range candidates {
		if key, ok := nonEmpty(cand.value); ok {
			return &Resolved{Provider: provider, Key: key, Source: cand.source}, nil
		}
	}
	return nil, model.NewMissingCredentialError(provider, config.ProviderEnvKeys[provider])
}

func genericHeaderKey(header http.Header) string {
	if v := header.Get("X-Provider-Api-Key"); v != "" {
		return v
	}
	return strings.TrimPrefix(header.Get("Authorization"), "Bearer ")
}

func stringFromBody(body map[string]any, field string) string {
	if body == nil {
		return ""
	}
	s, _ := body[field].(string)
	return s
}

// ClientSupplied reports whether the key came from the request rather than
// from the server's own environment.
func (r *Resolved) ClientSupplied() bool {
	return r != nil && r.Source != SourceServerEnv
}

func (r *Resolved) String() string {
	// Keys never reach logs.
	return fmt.Sprintf("%s key via %s", r.Provider, r.Source)
}
