package assistant

import (
	"errors"
	"fmt"
)

// Error code constants. Every failure on the chat path maps to exactly one.
const (
	ErrCodeConfiguration = "configuration_error"
	ErrCodeUpstream      = "upstream_error"
	ErrCodeTransport     = "transport_error"
	ErrCodeTimeout       = "timeout"
	ErrCodeMalformed     = "malformed_response"
	ErrCodeValidation    = "validation_error"
)

// Error is a typed failure on the chat path.
// Use the IsXxx helpers below to classify errors without inspecting fields.
type Error struct {
	Code    string // One of the ErrCode* constants.
	Message string // Human-readable description.
	Status  int    // Upstream HTTP status, when one was received.
	Body    string // Upstream response body, when one was received.
	Err     error  // Underlying error (may be nil).
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a typed error.
func NewError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// NewUpstreamError records a non-success response from the assistant service.
func NewUpstreamError(status int, body string) *Error {
	return &Error{
		Code:    ErrCodeUpstream,
		Message: fmt.Sprintf("Assistant API error: %d", status),
		Status:  status,
		Body:    body,
	}
}

// IsConfigurationError reports whether err is a missing-configuration failure.
func IsConfigurationError(err error) bool {
	return hasCode(err, ErrCodeConfiguration)
}

// IsUpstreamError reports whether the assistant service answered with a non-success status.
func IsUpstreamError(err error) bool {
	return hasCode(err, ErrCodeUpstream)
}

// IsTransportError reports whether the assistant service could not be reached.
// Timeouts count as transport failures.
func IsTransportError(err error) bool {
	return hasCode(err, ErrCodeTransport) || hasCode(err, ErrCodeTimeout)
}

// IsTimeoutError reports whether the call exceeded its deadline.
func IsTimeoutError(err error) bool {
	return hasCode(err, ErrCodeTimeout)
}

// IsMalformedError reports whether a reply did not match the expected shape.
func IsMalformedError(err error) bool {
	return hasCode(err, ErrCodeMalformed)
}

// IsValidationError reports whether input was rejected before any network call.
func IsValidationError(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

func hasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
