// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors and the HTTP layer maps them to
// status codes. Handlers that must hide upstream detail log the error and
// write their own message instead.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindValidation indicates caller input failed shape validation.
	KindValidation
	// KindProvider indicates the upstream AI call failed at transport or service level.
	KindProvider
	// KindEmptyResponse indicates the provider succeeded but returned no usable content.
	KindEmptyResponse
	// KindParseFailure indicates provider content could not be decoded into the expected shape.
	KindParseFailure
	// KindTimeout indicates the per-call deadline expired before the provider answered.
	KindTimeout
	// KindRateLimited indicates the caller exceeded the configured request rate.
	KindRateLimited
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindValidation:    "validation",
	KindProvider:      "provider_error",
	KindEmptyResponse: "empty_response",
	KindParseFailure:  "parse_failure",
	KindTimeout:       "timeout",
	KindRateLimited:   "rate_limited",
}

// String returns a stable, log-friendly name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string      // Operation that failed (optional)
	Err     error       // Underlying error (optional)
	Details interface{} // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
// Every upstream failure kind maps to 500; the relay contract does not expose
// 502/504 to callers.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the operation on the error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails sets additional details on the error.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Provider wraps a transport or provider-side failure.
func Provider(message string, err error) *Error {
	return Wrap(KindProvider, message, err)
}

// EmptyResponse reports a successful call without usable content.
func EmptyResponse(message string) *Error {
	return New(KindEmptyResponse, message)
}

// ParseFailure wraps a decode or shape-validation failure of provider content.
func ParseFailure(message string, err error) *Error {
	return Wrap(KindParseFailure, message, err)
}

// Timeout wraps a deadline expiry.
func Timeout(message string, err error) *Error {
	return Wrap(KindTimeout, message, err)
}

// RateLimited reports a caller over its request budget.
func RateLimited(message string) *Error {
	return New(KindRateLimited, message)
}

// GetDetails returns the details of the first *Error in the chain, if any.
func GetDetails(err error) interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// GetKind extracts the error kind from an error chain.
// Returns KindUnknown if no *Error is found.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err carries an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
