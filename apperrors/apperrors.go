// Package apperrors classifies failures into the HTTP-facing error taxonomy.
package apperrors

import (
	"errors"
	"net/http"
)

type Code struct {
	Name   string
	Status int
}

var (
	CodeValidation     = Code{"validation", http.StatusBadRequest}
	CodeAuthentication = Code{"authentication", http.StatusUnauthorized}
	CodeAuthorization  = Code{"authorization", http.StatusForbidden}
	CodeNotFound       = Code{"not_found", http.StatusNotFound}
	CodeConflict       = Code{"conflict", http.StatusBadRequest}
	CodeInternal       = Code{"internal", http.StatusInternalServerError}
)

// Error is a classified failure. Message is safe to show to clients; Err is
// the underlying cause and is only ever logged.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

func Wrap(code Code, msg string, err error) error {
	return &Error{Code: code, Message: msg, Err: err}
}

func Validation(msg string) error     { return New(CodeValidation, msg) }
func Authentication(msg string) error { return New(CodeAuthentication, msg) }
func Authorization(msg string) error  { return New(CodeAuthorization, msg) }
func NotFound(msg string) error       { return New(CodeNotFound, msg) }
func Conflict(msg string) error       { return New(CodeConflict, msg) }

func Internal(msg string, err error) error {
	return Wrap(CodeInternal, msg, err)
}

// As extracts a classified error. Anything unclassified is reported as an
// internal error so callers never leak raw causes.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeInternal, Message: "internal server error", Err: err}
}
