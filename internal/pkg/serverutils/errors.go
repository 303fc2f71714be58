package serverutils

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	KindValidation    = "validation_error"
	KindNotFound      = "not_found"
	KindConfiguration = "configuration_error"
	KindUpstream      = "upstream_error"
	KindInternal      = "internal_error"
)

// AppError is an error that knows its HTTP status and how to describe itself to clients.
type AppError struct {
	Code    int
	Kind    string
	Message string
	Detail  any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string, detail any) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: message, Detail: detail}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: message}
}

func NewConfigurationError(message string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Kind: KindConfiguration, Message: message, Err: err}
}

// NewUpstreamError reports a failed call to an external dependency (model, storage).
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Code: http.StatusBadGateway, Kind: KindUpstream, Message: message, Err: err}
}

// AsAppError unwraps err into an *AppError when one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
