// Package errors provides the closed set of failure kinds used by the resolver.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure. The set is closed; callers switch on it.
type Kind string

const (
	KindParamError          Kind = "PARAM_ERROR"
	KindUnsupportedPlatform Kind = "UNSUPPORTED_PLATFORM"
	KindNetworkTimeout      Kind = "NETWORK_TIMEOUT"
	KindNetworkError        Kind = "NETWORK_ERROR"
	KindEmptyResponse       Kind = "EMPTY_RESPONSE"
	KindInvalidResponse     Kind = "INVALID_RESPONSE"
	KindJSONParseError      Kind = "JSON_PARSE_ERROR"
	KindAPIError            Kind = "API_ERROR"
	KindAPIFailed           Kind = "API_FAILED"
	KindNoData              Kind = "NO_DATA"
	KindNoAudioURL          Kind = "NO_AUDIO_URL"
	KindInvalidURL          Kind = "INVALID_URL"
	KindExhausted           Kind = "EXHAUSTED"

	// KindServiceDisabled is raised when the status endpoint switched the service off.
	KindServiceDisabled Kind = "SERVICE_DISABLED"
)

// Kinds lists every known kind in declaration order.
var Kinds = []Kind{
	KindParamError, KindUnsupportedPlatform, KindNetworkTimeout, KindNetworkError,
	KindEmptyResponse, KindInvalidResponse, KindJSONParseError, KindAPIError,
	KindAPIFailed, KindNoData, KindNoAudioURL, KindInvalidURL, KindExhausted,
	KindServiceDisabled,
}

// HTTPStatus returns the status the HTTP adapter reports for k.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindParamError:
		return http.StatusBadRequest
	case KindUnsupportedPlatform:
		return http.StatusNotImplemented
	case KindNetworkTimeout:
		return http.StatusGatewayTimeout
	case KindNoAudioURL, KindNoData:
		return http.StatusNotFound
	case KindServiceDisabled:
		return http.StatusServiceUnavailable
	case KindNetworkError, KindEmptyResponse, KindInvalidResponse, KindJSONParseError,
		KindAPIError, KindAPIFailed, KindInvalidURL, KindExhausted:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error represents a structured resolver error.
type Error struct {
	Kind       Kind        `json:"kind"`
	Message    string      `json:"message"`
	HTTPStatus int         `json:"-"`
	Details    interface{} `json:"details,omitempty"`
	Err        error       `json:"-"` // Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// WithError wraps another error.
func (e *Error) WithError(err error) *Error {
	e.Err = err
	return e
}

// New creates a new Error with the default status of kind.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		HTTPStatus: kind.HTTPStatus(),
	}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a kind and message.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		HTTPStatus: kind.HTTPStatus(),
		Err:        err,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// GetHTTPStatus returns the HTTP status code for an error.
// If the error is not an *Error, returns 500.
func GetHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *Error
	if !stderrors.As(err, &e) {
		return http.StatusInternalServerError
	}
	if e.HTTPStatus == 0 {
		return e.Kind.HTTPStatus()
	}
	return e.HTTPStatus
}

// As is stderrors.As, re-exported so callers need a single errors import.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Is is stderrors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
