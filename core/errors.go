package core

import (
	"errors"
	"net/http"
)

// Kind discriminates errors that cross the pipeline boundary.
type Kind string

const (
	KindForbidden        Kind = "forbidden"
	KindValidationFailed Kind = "validation_failed"
	KindUpload           Kind = "upload_error"
	KindHandler          Kind = "handler_error"
	KindInternal         Kind = "internal_error"
	KindTimeout          Kind = "timeout"
	KindTooManyRequests  Kind = "too_many_requests"
)

// Error is the normalized error returned by a built pipeline.
// Code is an HTTP-like status used by transports; Key is intended for
// i18n lookups the same way translation keys are used elsewhere.
type Error struct {
	Kind    Kind
	Code    int
	Key     string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return e.Key
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same kind and key.
// A target without a key matches any error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Key == "" || t.Key == e.Key
}

// WithCause returns a copy of e carrying cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithMessage returns a copy of e with a caller-visible message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// Sentinel errors, compared with errors.Is by kind.
var (
	ErrForbidden        = &Error{Kind: KindForbidden, Code: http.StatusForbidden, Key: "forbidden"}
	ErrValidationFailed = &Error{Kind: KindValidationFailed, Code: http.StatusBadRequest, Key: "validation_failed"}
	ErrUpload           = &Error{Kind: KindUpload, Code: http.StatusBadRequest, Key: "upload_error"}
	ErrPayloadTooLarge  = &Error{Kind: KindUpload, Code: http.StatusRequestEntityTooLarge, Key: "payload_too_large"}
	ErrHandler          = &Error{Kind: KindHandler, Code: http.StatusInternalServerError, Key: "handler_error"}
	ErrInternal         = &Error{Kind: KindInternal, Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrTimeout          = &Error{Kind: KindTimeout, Code: http.StatusRequestTimeout, Key: "request_timeout"}
	ErrTooManyRequests  = &Error{Kind: KindTooManyRequests, Code: http.StatusTooManyRequests, Key: "too_many_requests"}
)

// Forbidden creates a guard denial error.
func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "Forbidden resource"
	}
	return ErrForbidden.WithMessage(msg)
}

// ValidationFailed creates a pipe rejection error preserving the pipe's message.
func ValidationFailed(msg string, cause error) *Error {
	return &Error{
		Kind:    KindValidationFailed,
		Code:    http.StatusBadRequest,
		Key:     ErrValidationFailed.Key,
		Message: msg,
		Cause:   cause,
	}
}

// Upload creates a translated upload error.
func Upload(code int, key, msg string, cause error) *Error {
	return &Error{Kind: KindUpload, Code: code, Key: key, Message: msg, Cause: cause}
}

// Handler wraps an error produced by the handler itself.
func Handler(cause error) *Error {
	return ErrHandler.WithCause(cause)
}

// Internal wraps an unclassified error.
func Internal(cause error) *Error {
	return ErrInternal.WithCause(cause)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or an empty kind when err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// StatusCode maps err to an HTTP status, defaulting to 500.
func StatusCode(err error) int {
	if e, ok := As(err); ok && e.Code > 0 {
		return e.Code
	}
	return http.StatusInternalServerError
}
