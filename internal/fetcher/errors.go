package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of an upstream failure
type ErrorType string

const (
	// ErrorTypeNetwork indicates a transport-level error (connection refused, DNS, etc.)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit indicates HTTP 429
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates HTTP 5xx
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates HTTP 4xx except 429
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeValidation indicates a response that arrived but could not be used
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeTimeout indicates the request deadline expired
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeUnknown indicates an error of unknown type
	ErrorTypeUnknown ErrorType = "unknown"
)

// FetchError is a classified failure from one upstream source.
type FetchError struct {
	Source     string
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	prefix := string(e.Type)
	if e.Source != "" {
		prefix = e.Source + " " + prefix
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", prefix, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", prefix, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a network error
func NewNetworkError(source string, cause error) *FetchError {
	return &FetchError{
		Source:    source,
		Type:      ErrorTypeNetwork,
		Retryable: true,
		Message:   "request failed",
		Cause:     cause,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(source string, cause error) *FetchError {
	return &FetchError{
		Source:    source,
		Type:      ErrorTypeTimeout,
		Retryable: true,
		Message:   "request timed out",
		Cause:     cause,
	}
}

// NewValidationError creates a validation error
func NewValidationError(source, message string) *FetchError {
	return &FetchError{
		Source:  source,
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// FromTransport classifies an error returned before any HTTP status was seen.
func FromTransport(source string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(source, err)
	}
	return NewNetworkError(source, err)
}

// ClassifyHTTPError classifies a non-2xx status code.
func ClassifyHTTPError(source string, statusCode int) *FetchError {
	e := &FetchError{Source: source, StatusCode: statusCode}
	switch {
	case statusCode == http.StatusTooManyRequests:
		e.Type, e.Retryable, e.Message = ErrorTypeRateLimit, true, "rate limit exceeded"
	case statusCode >= http.StatusInternalServerError:
		e.Type, e.Retryable, e.Message = ErrorTypeServer, true, "server returned an error"
	case statusCode >= http.StatusBadRequest:
		e.Type, e.Message = ErrorTypeClient, fmt.Sprintf("client error: HTTP %d", statusCode)
	default:
		e.Type, e.Message = ErrorTypeUnknown, fmt.Sprintf("unexpected status code: %d", statusCode)
	}
	return e
}

// ErrorTypeOf returns the class of err, or ErrorTypeUnknown when err is not
// a FetchError. nil yields "".
func ErrorTypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ErrorTypeUnknown
}
