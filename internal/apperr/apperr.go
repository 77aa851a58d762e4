// Package apperr defines the coded errors the catalog surfaces to callers.
//
// Services return one of the sentinels, usually with a message and a cause:
//
//	return apperr.Duplicate("Author already exist").WithCause(err)
//
// and handlers match them with errors.Is:
//
//	if errors.Is(err, apperr.ErrDuplicate) { ... }
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeDuplicate         Code = "DUPLICATE"
	CodeNotFound          Code = "NOT_FOUND"
	CodeMissingParameter  Code = "MISSING_PARAMETER"
	CodeValidation        Code = "VALIDATION"
	CodeAmbiguous         Code = "AMBIGUOUS"
	CodeConnectionFailure Code = "CONNECTION_FAILURE"
	CodePersistence       Code = "PERSISTENCE"
)

// HTTPStatus returns the status written for the code. Every taxonomy entry is
// reported as a client-visible 400; success paths use 200 and 201.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeDuplicate, CodeNotFound, CodeMissingParameter, CodeValidation,
		CodeAmbiguous, CodeConnectionFailure, CodePersistence:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded error with a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrDuplicate         = &Error{Code: CodeDuplicate, Message: "already exists"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrMissingParameter  = &Error{Code: CodeMissingParameter, Message: "missing search parameter"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "invalid input"}
	ErrAmbiguous         = &Error{Code: CodeAmbiguous, Message: "more than one match"}
	ErrConnectionFailure = &Error{Code: CodeConnectionFailure, Message: "Connection error"}
	ErrPersistence       = &Error{Code: CodePersistence, Message: "Error while processing request"}
)

func Duplicate(msg string) *Error {
	return &Error{Code: CodeDuplicate, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func MissingParameter(msg string) *Error {
	return &Error{Code: CodeMissingParameter, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

func Ambiguous(msg string) *Error {
	return &Error{Code: CodeAmbiguous, Message: msg}
}

func ConnectionFailure(msg string) *Error {
	return &Error{Code: CodeConnectionFailure, Message: msg}
}

func Persistence(msg string) *Error {
	return &Error{Code: CodePersistence, Message: msg}
}

// Wrap returns a coded error carrying err as its cause.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// CodeOf returns the code carried by err, or "" when err is not coded.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Describe returns the message shown to clients for err. Uncoded errors get
// the persistence description so driver details never leak.
func Describe(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrPersistence.Message
}

// StatusOf returns the HTTP status for err. Uncoded errors map to the
// persistence status.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return ErrPersistence.HTTPStatus()
}
