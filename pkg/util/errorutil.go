package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	// Details carries the upstream error payload verbatim when one exists.
	Details json.RawMessage
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details json.RawMessage) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewConfigurationError reports missing upstream credentials; the caller must
// not have attempted any network call.
func NewConfigurationError(message string) error {
	return NewDomainError("CONFIGURATION_ERROR", message, http.StatusInternalServerError, nil)
}

func NewValidationError(message string) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, nil)
}

// NewMissingIdentity reports that requester identity is required but absent or unusable.
func NewMissingIdentity(message string) error {
	return NewDomainError("MISSING_IDENTITY", message, http.StatusBadRequest, nil)
}

// NewUploadError wraps a single attachment upload failure. Callers treat it as
// non-fatal; it never reaches the HTTP boundary on its own.
func NewUploadError(filename string, details json.RawMessage) error {
	return &DomainError{
		Code:       "UPLOAD_FAILED",
		Message:    fmt.Sprintf("failed to upload attachment %q", filename),
		HTTPStatus: http.StatusBadGateway,
		Details:    details,
	}
}

// NewUpstreamError propagates an upstream HTTP or transport failure. When the
// upstream status is unknown, the error surfaces as a 500.
func NewUpstreamError(message string, status int, details json.RawMessage) error {
	if status <= 0 {
		status = http.StatusInternalServerError
	}
	return &DomainError{
		Code:       "UPSTREAM_ERROR",
		Message:    message,
		HTTPStatus: status,
		Details:    details,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
