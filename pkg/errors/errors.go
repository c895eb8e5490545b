// Package errors defines the connector error taxonomy and its RFC 7807
// Problem Details representation.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error functions
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// Kind is the machine-readable error category returned to the terminal.
type Kind string

const (
	KindUnauthorized        Kind = "Unauthorized"
	KindUnknownWidget       Kind = "UnknownWidget"
	KindValidation          Kind = "ValidationError"
	KindTranslation         Kind = "TranslationError"
	KindUpstreamTimeout     Kind = "UpstreamTimeout"
	KindUpstreamUnavailable Kind = "UpstreamUnavailable"
	KindUpstreamRejected    Kind = "UpstreamRejected"
	KindInternal            Kind = "InternalError"
)

// Error carries a kind, a human-readable message and, for validation and
// translation failures, the name of the offending field.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`

	cause error
}

var _ error = (*Error)(nil)

// Error implements error.
func (e *Error) Error() string {
	str := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Field != "" {
		str += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.cause != nil {
		str += fmt.Sprintf(": %v", e.cause)
	}
	return str
}

// Unwrap exposes the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches on kind so callers can compare against sentinel constructors.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if other, ok := target.(*Error); ok {
		return other.Kind == e.Kind
	}
	if e.cause != nil {
		return Is(e.cause, target)
	}
	return false
}

// Wrap attaches a cause and returns the error for chaining.
func (e *Error) Wrap(cause error) *Error {
	err := *e
	err.cause = cause
	return &err
}

// Unauthorized reports a missing or mismatched inbound credential. The
// message is fixed so responses never hint how close the presented value was.
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "missing or invalid API key"}
}

// UnknownWidget reports a widget id absent from the registry.
func UnknownWidget(id string) *Error {
	return &Error{Kind: KindUnknownWidget, Message: fmt.Sprintf("unknown widget %q", id)}
}

// Validation reports a rejected request parameter by name.
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Translation reports a provider payload that does not match the widget's
// declared column schema.
func Translation(field, format string, args ...any) *Error {
	return &Error{Kind: KindTranslation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// UpstreamTimeout reports an exhausted provider call deadline.
func UpstreamTimeout(cause error) *Error {
	return &Error{Kind: KindUpstreamTimeout, Message: "provider call timed out", cause: cause}
}

// UpstreamUnavailable reports a transport-level provider failure.
func UpstreamUnavailable(cause error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: "provider unavailable", cause: cause}
}

// UpstreamRejected reports a provider-declared client error (the request
// itself was invalid as far as the provider is concerned).
func UpstreamRejected(detail string) *Error {
	msg := "provider rejected the request"
	if detail != "" {
		msg += ": " + detail
	}
	return &Error{Kind: KindUpstreamRejected, Message: msg}
}

// Internal hides an unexpected failure behind a generic message. The cause
// stays attached for logs but is never serialized.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: cause}
}

// KindOf extracts the Kind from any error, defaulting to KindInternal for
// errors raised outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldOf extracts the offending field name, when the error names one.
func FieldOf(err error) string {
	var e *Error
	if As(err, &e) {
		return e.Field
	}
	return ""
}

// HTTPStatus maps a kind to the externally visible status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUnknownWidget:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindUpstreamUnavailable, KindUpstreamRejected, KindTranslation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
