package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures for retry decisions and status mapping
type ErrorKind string

const (
	KindInvalidURL             ErrorKind = "invalid_url_format"
	KindContentTypeMismatch    ErrorKind = "content_type_mismatch"
	KindUnsupportedContentType ErrorKind = "unsupported_content_type"
	KindTransient              ErrorKind = "transient_fetch_failure"
	KindBadRequest             ErrorKind = "bad_request"
	KindNotFound               ErrorKind = "not_found"
	KindUnknown                ErrorKind = "unknown_fetch_failure"
	KindFetchExhausted         ErrorKind = "fetch_exhausted"
	KindExpectedFileNotFound   ErrorKind = "expected_file_not_found"
	KindIO                     ErrorKind = "io_failure"
)

// Error is a typed failure carrying enough context to log and a
// human-readable message safe to return to callers.
type Error struct {
	Kind       ErrorKind
	Platform   Platform
	Identifier string
	Message    string
	Err        error
}

// Error implements error
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Platform != "" {
		prefix = fmt.Sprintf("%s %s", e.Platform, prefix)
	}
	if e.Identifier != "" {
		prefix = fmt.Sprintf("%s [%s]", prefix, e.Identifier)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a typed error
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithRef fills in platform and identifier when they are not set yet
func (e *Error) WithRef(ref ContentReference) *Error {
	if e.Platform == "" {
		e.Platform = ref.Platform
	}
	if e.Identifier == "" {
		e.Identifier = ref.Identifier
	}
	return e
}

// Transient wraps a connectivity or rate-limit failure
func Transient(err error) *Error {
	return NewError(KindTransient, "temporary failure contacting upstream", err)
}

// Permanent wraps a bad request failure from upstream
func Permanent(message string, err error) *Error {
	return NewError(KindBadRequest, message, err)
}

// NotFound wraps an upstream not-found failure
func NotFound(message string, err error) *Error {
	return NewError(KindNotFound, message, err)
}

// Unknown wraps a failure that is neither transient nor a known permanent one
func Unknown(err error) *Error {
	return NewError(KindUnknown, "failed to fetch content", err)
}

// IOFailure wraps a local filesystem failure
func IOFailure(message string, err error) *Error {
	return NewError(KindIO, message, err)
}

// AsError extracts a typed error from the chain
func AsError(err error) (*Error, bool) {
	var derr *Error
	if errors.As(err, &derr) {
		return derr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindUnknown for untyped errors
func KindOf(err error) ErrorKind {
	if derr, ok := AsError(err); ok {
		return derr.Kind
	}
	return KindUnknown
}

// IsTransient reports whether err should be retried
func IsTransient(err error) bool {
	return err != nil && KindOf(err) == KindTransient
}

// PublicMessage returns the message safe to show to callers
func PublicMessage(err error) string {
	if derr, ok := AsError(err); ok {
		if derr.Kind == KindFetchExhausted || derr.Kind == KindUnknown {
			if derr.Err != nil {
				return fmt.Sprintf("%s: %s", derr.Message, rootMessage(derr.Err))
			}
		}
		return derr.Message
	}
	return "internal server error"
}

// rootMessage returns the message of the innermost typed error, or err itself
func rootMessage(err error) string {
	if derr, ok := AsError(err); ok && derr.Err != nil {
		return derr.Err.Error()
	}
	return err.Error()
}
