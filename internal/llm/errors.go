package llm

import (
	"errors"
	"fmt"

	"github.com/jonathan/cv-assistant/internal/types"
)

// ErrMissingCredential is returned before any network call when no API key is configured.
var ErrMissingCredential = errors.New("API key is required")

// ErrMalformedResponse is returned when a successful response carries no generated text
// at candidates[0].content.parts[0].text.
var ErrMalformedResponse = errors.New("invalid response format from Gemini API")

// DefaultProviderMessage is used when a provider error body has no readable message.
const DefaultProviderMessage = "Failed to generate content"

// ProviderError is a non-2xx answer from the generation service.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// TransportError covers DNS failures, timeouts, resets and unreadable bodies.
type TransportError struct {
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to generation service failed: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Reason labels used in metrics, logs and API responses.
const (
	ReasonMissingCredential = "missing_credential"
	ReasonProviderError     = "provider_error"
	ReasonMalformedResponse = "malformed_response"
	ReasonTransportError    = "transport_error"
	ReasonInvalidInput      = "invalid_input"
	ReasonUnknown           = "unknown"
)

// Reason classifies err into one of the reason labels. A nil error yields "".
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var providerErr *ProviderError
	var transportErr *TransportError
	var fieldsErr *types.FieldsError
	switch {
	case errors.Is(err, ErrMissingCredential):
		return ReasonMissingCredential
	case errors.Is(err, ErrMalformedResponse):
		return ReasonMalformedResponse
	case errors.As(err, &providerErr):
		return ReasonProviderError
	case errors.As(err, &transportErr):
		return ReasonTransportError
	case errors.As(err, &fieldsErr):
		return ReasonInvalidInput
	default:
		return ReasonUnknown
	}
}
