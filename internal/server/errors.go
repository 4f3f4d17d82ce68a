package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-assistant/internal/assistant"
	"github.com/jonathan/cv-assistant/internal/fetch"
	"github.com/jonathan/cv-assistant/internal/llm"
	"github.com/jonathan/cv-assistant/internal/schemas"
	"github.com/jonathan/cv-assistant/internal/types"
)

// ErrNotFound indicates the requested resource does not exist
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound     *ErrNotFound
		validation   *ErrValidation
		fieldsErr    *types.FieldsError
		unknownField *types.UnknownFieldError
		schemaErr    *schemas.ValidationError
		providerErr  *llm.ProviderError
		transportErr *llm.TransportError
		fetchErr     *fetch.Error
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &fieldsErr),
		errors.As(err, &unknownField), errors.As(err, &schemaErr),
		errors.Is(err, assistant.ErrInvalidCredential):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrMissingCredential):
		return http.StatusPreconditionRequired
	case errors.Is(err, assistant.ErrInFlight):
		return http.StatusConflict
	case errors.As(err, &transportErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &providerErr), errors.Is(err, llm.ErrMalformedResponse), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
