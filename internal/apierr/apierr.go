package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error that carries the HTTP status it should surface with.
// Code names the component that raised it.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code, format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, code, fmt.Errorf(format, args...))
}

func NotFound(code, format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, code, fmt.Errorf(format, args...))
}

func Conflict(code, format string, args ...interface{}) *Error {
	return New(http.StatusConflict, code, fmt.Errorf(format, args...))
}

func NotImplemented(code, format string, args ...interface{}) *Error {
	return New(http.StatusNotImplemented, code, fmt.Errorf(format, args...))
}

func Internal(code, format string, args ...interface{}) *Error {
	return New(http.StatusInternalServerError, code, fmt.Errorf(format, args...))
}

// StatusOf reports the status carried by err, or 500 when err is not an *Error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
