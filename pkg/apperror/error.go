package apperror

import (
	"errors"
	"net/http"
)

// Kind is the stable machine-readable error category surfaced to clients.
type Kind string

const (
	KindUnauthenticated   Kind = "unauthenticated"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindValidation        Kind = "validation"
	KindInvalidTransition Kind = "invalid_transition"
	KindRateLimited       Kind = "rate_limited"
	KindInternal          Kind = "internal"
)

type AppError struct {
	Kind    Kind     `json:"kind"`
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(KindValidation, http.StatusBadRequest, message, nil)
}

// Validation carries per-field messages alongside the summary.
func Validation(message string, details ...string) *AppError {
	e := New(KindValidation, http.StatusBadRequest, message, nil)
	e.Details = details
	return e
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthenticated, http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(KindConflict, http.StatusConflict, message, nil)
}

func InvalidTransition(message string) *AppError {
	return New(KindInvalidTransition, http.StatusConflict, message, nil)
}

func TooManyRequests(message string) *AppError {
	return New(KindRateLimited, http.StatusTooManyRequests, message, nil)
}

func Internal(err error) *AppError {
	return New(KindInternal, http.StatusInternalServerError, "Internal Server Error", err)
}

// KindOf reports the kind of err, treating anything that is not an AppError as internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
