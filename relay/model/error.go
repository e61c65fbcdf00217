package model

import (
	"fmt"
	"net/http"
	"strings"
)

// Error taxonomy kinds carried in Error.Type.
const (
	ErrorTypeInvalidBody       = "invalid_body"
	ErrorTypeValidation        = "validation_error"
	ErrorTypeMissingCredential = "missing_credential"
	ErrorTypeProvider          = "provider_error"
	ErrorTypeMalformedResponse = "malformed_provider_response"
)

type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    any    `json:"code,omitempty"`
}

type ErrorWithStatusCode struct {
	Error
	StatusCode int    `json:"status_code"`
	Provider   string `json:"provider,omitempty"`
}

// Retryable reports whether the caller may retry. Only provider errors are.
func (e *ErrorWithStatusCode) Retryable() bool {
	return e != nil && e.Type == ErrorTypeProvider
}

func NewInvalidBodyError() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{
		Error: Error{
			Message: "request body is not valid JSON",
			Type:    ErrorTypeInvalidBody,
		},
		StatusCode: http.StatusBadRequest,
	}
}

// NewValidationError joins the collected field messages into one boundary
// error. The first offending field is carried in Param.
func NewValidationError(messages []string, firstField string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{
		Error: Error{
			Message: strings.Join(messages, "; "),
			Type:    ErrorTypeValidation,
			Param:   firstField,
		},
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationErrorf(field string, format string, a ...any) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{
		Error: Error{
			Message: fmt.Sprintf(format, a...),
			Type:    ErrorTypeValidation,
			Param:   field,
		},
		StatusCode: http.StatusBadRequest,
	}
}

// NewMissingCredentialError names the env vars that would satisfy the request
// server-side, so a deployment operator can fix it without reading code.
func NewMissingCredentialError(provider string, envKey string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{
		Error: Error{
			Message: fmt.Sprintf("no API key found for provider %s: supply one in the request headers or body, or set %s on the server", provider, envKey),
			Type:    ErrorTypeMissingCredential,
			Param:   provider,
		},
		StatusCode: http.StatusUnauthorized,
		Provider:   provider,
	}
}

// NewProviderError surfaces an upstream failure with the provider's own status
// code when one is available, otherwise a generic gateway failure.
func NewProviderError(provider string, statusCode int, message string) *ErrorWithStatusCode {
	if statusCode == 0 {
		statusCode = http.StatusBadGateway
	}
	return &ErrorWithStatusCode{
		Error: Error{
			Message: message,
			Type:    ErrorTypeProvider,
		},
		StatusCode: statusCode,
		Provider:   provider,
	}
}

// NewMalformedResponseError marks a 2xx reply whose content could not be used.
// Fatal for the current call only: prior conversation state stays intact.
func NewMalformedResponseError(provider string, message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{
		Error: Error{
			Message: message,
			Type:    ErrorTypeMalformedResponse,
		},
		StatusCode: http.StatusBadGateway,
		Provider:   provider,
	}
}
