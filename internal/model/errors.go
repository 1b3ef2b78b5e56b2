package model

import (
	"errors"
	"net/http"
)

// ErrorKind classifies a failure for the transport layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindConflict
	KindUpload
)

// Error codes sent in API responses
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUploadError  = "UPLOAD_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is the error type returned by the service layer.
// Kind drives the HTTP status, Code is the machine-readable error code
// and Message is safe to show to clients.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by kind and code so that a wrapped copy
// produced by Wrap still satisfies errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && e.Message == t.Message
}

// Wrap returns a copy of e carrying cause.
func (e *AppError) Wrap(cause error) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: cause}
}

// Status maps the error kind to an HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind ErrorKind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func BadRequest(message string) *AppError {
	return newError(KindBadRequest, CodeBadRequest, message)
}

func Unauthorized(code, message string) *AppError {
	return newError(KindUnauthorized, code, message)
}

func NotFound(message string) *AppError {
	return newError(KindNotFound, CodeNotFound, message)
}

func Conflict(message string) *AppError {
	return newError(KindConflict, CodeConflict, message)
}

func UploadError(message string) *AppError {
	return newError(KindUpload, CodeUploadError, message)
}

func Internal(message string) *AppError {
	return newError(KindInternal, CodeInternal, message)
}

// AsAppError extracts an *AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
