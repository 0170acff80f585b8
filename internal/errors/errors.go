package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Citrus error code.
type ErrorCode string

const (
	ErrNetworkUnavailable ErrorCode = "NETWORK_UNAVAILABLE" // 503
	ErrMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"  // 502
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrNoFoodDetected     ErrorCode = "NO_FOOD_DETECTED"    // 422
	ErrEncodingFailure    ErrorCode = "ENCODING_FAILURE"    // 500
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// CitrusError represents a structured error with code, status, and details.
type CitrusError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CitrusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNetworkUnavailable creates a 503 error for transport failures and
// unexpected upstream statuses. upstreamStatus is 0 when no response arrived.
func NewNetworkUnavailable(endpoint string, upstreamStatus int, cause error) *CitrusError {
	msg := fmt.Sprintf("upstream unavailable: %s", endpoint)
	if cause != nil {
		msg = fmt.Sprintf("upstream unavailable: %s: %v", endpoint, cause)
	} else if upstreamStatus != 0 {
		msg = fmt.Sprintf("upstream returned status %d: %s", upstreamStatus, endpoint)
	}
	details := map[string]any{"endpoint": endpoint}
	if upstreamStatus != 0 {
		details["upstream_status"] = upstreamStatus
	}
	return &CitrusError{
		Code:    ErrNetworkUnavailable,
		Status:  503,
		Message: msg,
		Details: details,
	}
}

// NewMalformedResponse creates a 502 error for payloads that cannot be decoded
// or do not match the expected schema.
func NewMalformedResponse(source string, cause error) *CitrusError {
	msg := fmt.Sprintf("malformed %s payload", source)
	if cause != nil {
		msg = fmt.Sprintf("malformed %s payload: %v", source, cause)
	}
	return &CitrusError{
		Code:    ErrMalformedResponse,
		Status:  502,
		Message: msg,
		Details: map[string]any{"source": source},
	}
}

// NewNotFound creates a 404 error for a missing product or log entry.
func NewNotFound(kind, identifier string) *CitrusError {
	return &CitrusError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewNoFoodDetected creates a 422 error when the estimator reports that the
// text does not describe food.
func NewNoFoodDetected() *CitrusError {
	return &CitrusError{
		Code:    ErrNoFoodDetected,
		Status:  422,
		Message: "no food detected in description",
	}
}

// NewEncodingFailure creates a 500 error when an outbound request body cannot be built.
func NewEncodingFailure(err error) *CitrusError {
	msg := "request encoding failed"
	if err != nil {
		msg = fmt.Sprintf("request encoding failed: %v", err)
	}
	return &CitrusError{
		Code:    ErrEncodingFailure,
		Status:  500,
		Message: msg,
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CitrusError {
	return &CitrusError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *CitrusError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CitrusError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a CitrusError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *CitrusError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// CodeOf returns the code of a CitrusError, or ErrInternal for any other non-nil error.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var cErr *CitrusError
	if stderrors.As(err, &cErr) {
		return cErr.Code
	}
	return ErrInternal
}

// IsSoft reports whether err is an expected "no data" outcome of talking to a
// food source: the caller should show an empty result rather than fail.
func IsSoft(err error) bool {
	switch CodeOf(err) {
	case ErrNetworkUnavailable, ErrMalformedResponse, ErrNotFound, ErrNoFoodDetected, ErrEncodingFailure:
		return true
	}
	return false
}
