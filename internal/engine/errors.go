// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code returned to API clients.
type Code string

const (
	CodeSchemaMismatch     Code = "SCHEMA_MISMATCH"
	CodeMalformedContent   Code = "MALFORMED_CONTENT"
	CodeRenderBackendError Code = "RENDER_BACKEND_ERROR"
)

// HTTPStatus maps a code to the response status handlers should use.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeSchemaMismatch, CodeMalformedContent:
		return http.StatusUnprocessableEntity
	case CodeRenderBackendError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a compile or render failure. Two Errors are considered equal by
// errors.Is when their codes match, so callers compare against the
// sentinels below.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// Sentinel errors for use with errors.Is().
var (
	ErrSchemaMismatch   = &Error{Code: CodeSchemaMismatch, Message: "content does not match template type"}
	ErrMalformedContent = &Error{Code: CodeMalformedContent, Message: "malformed content"}
	ErrRenderBackend    = &Error{Code: CodeRenderBackendError, Message: "render backend failed"}
)

func schemaMismatch(format string, args ...any) *Error {
	return &Error{Code: CodeSchemaMismatch, Message: fmt.Sprintf(format, args...)}
}

func malformed(format string, args ...any) *Error {
	return &Error{Code: CodeMalformedContent, Message: fmt.Sprintf(format, args...)}
}

func malformedCause(msg string, cause error) *Error {
	return &Error{Code: CodeMalformedContent, Message: msg, cause: cause}
}

func backendFailure(backend string, cause error) *Error {
	return &Error{
		Code:    CodeRenderBackendError,
		Message: fmt.Sprintf("render backend %q failed", backend),
		cause:   cause,
	}
}

// CodeOf returns the engine code carried by err, or "" when err is not an
// engine error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
