// Package errs defines the categorized errors surfaced to users.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies an error category
type Kind string

const (
	KindUnknown           Kind = "unknown"
	KindEmptyInput        Kind = "empty_input"
	KindUnknownStyle      Kind = "unknown_style"
	KindMissingCredential Kind = "missing_credential"
	KindGatewayFailure    Kind = "gateway_failure"
	KindRenderFailure     Kind = "render_failure"
	KindBusy              Kind = "busy"
)

// Error is a categorized error with a user-facing message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrEmptyInput) works
// on wrapped values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Err == nil
}

// New creates a categorized error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap categorizes err. A nil err yields nil.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HasKind reports whether err carries the given kind
func HasKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps an error to a response status
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindEmptyInput, KindUnknownStyle:
		return http.StatusBadRequest
	case KindBusy:
		return http.StatusConflict
	case KindGatewayFailure:
		return http.StatusBadGateway
	case KindMissingCredential:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrEmptyInput        = New(KindEmptyInput, "input is empty")
	ErrUnknownStyle      = New(KindUnknownStyle, "unknown style")
	ErrMissingCredential = New(KindMissingCredential, "missing model credential")
	ErrGatewayFailure    = New(KindGatewayFailure, "model request failed")
	ErrRenderFailure     = New(KindRenderFailure, "document rendering failed")
	ErrBusy              = New(KindBusy, "a request is already in progress")
)
