// Package apperrors provides the coded error taxonomy shared by the
// fulfillment, invoicing and rendering packages.
package apperrors

import "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified error.
	CodeUnknown Code = "UNKNOWN"
	// CodeInvalidTransition is returned when a status change is not allowed.
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	// CodeSequenceUnavailable is returned when the counter store cannot allocate.
	CodeSequenceUnavailable Code = "SEQUENCE_UNAVAILABLE"
	// CodeDuplicateInvoiceAttempt signals a second invoice for the same order.
	CodeDuplicateInvoiceAttempt Code = "DUPLICATE_INVOICE_ATTEMPT"
	// CodeInvalidDocumentInput is returned when an order cannot be rendered.
	CodeInvalidDocumentInput Code = "INVALID_DOCUMENT_INPUT"
	// CodeNotFound is returned for unknown order, invoice or shop ids.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInvalidRequest is returned when request fields fail validation.
	CodeInvalidRequest Code = "INVALID_REQUEST"
)

// Sentinels for errors.Is checks. Matching is by code, so any *Error carrying
// the same code satisfies errors.Is against these values.
var (
	ErrInvalidTransition       = New(CodeInvalidTransition, "status transition is not allowed")
	ErrSequenceUnavailable     = New(CodeSequenceUnavailable, "invoice sequence unavailable")
	ErrDuplicateInvoiceAttempt = New(CodeDuplicateInvoiceAttempt, "invoice already exists for order")
	ErrInvalidDocumentInput    = New(CodeInvalidDocumentInput, "invalid document input")
	ErrNotFound                = New(CodeNotFound, "not found")
	ErrInvalidRequest          = New(CodeInvalidRequest, "invalid request")
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs)
	Metadata map[string]string // Flat context, e.g. ids
	Details  any               // Caller-facing payload, encoded verbatim in responses
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a domain error carrying flat metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// WithDetails creates a domain error carrying a caller-facing payload.
func WithDetails(code Code, message string, details any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// NotFound builds a NOT_FOUND error for the given kind of record.
func NotFound(kind, id string) *Error {
	return WithMetadata(CodeNotFound, kind+" not found", map[string]string{"kind": kind, "id": id})
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
