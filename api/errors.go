// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-cio.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrClosed            = errors.New("object is closed")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrNotSupported      = errors.New("operation not supported")
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidAddress    = errors.New("invalid address")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeNotSupported
	ErrCodeNotFound
	ErrCodeInvalidAddress
	ErrCodeClosed
	ErrCodeInternal
)

// sentinel maps a code onto the package-level error it stands for.
func (c ErrorCode) sentinel() error {
	switch c {
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	case ErrCodeResourceExhausted:
		return ErrResourceExhausted
	case ErrCodeNotSupported:
		return ErrNotSupported
	case ErrCodeNotFound:
		return ErrNotFound
	case ErrCodeInvalidAddress:
		return ErrInvalidAddress
	case ErrCodeClosed:
		return ErrClosed
	}
	return nil
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Is reports whether target is the sentinel matching e.Code, so callers can
// write errors.Is(err, api.ErrNotFound) against structured errors.
func (e *Error) Is(target error) bool {
	if s := e.Code.sentinel(); s != nil && s == target {
		return true
	}
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
