// Package apperr carries the error kinds shared by the outline engine, the
// CLI and the tool server.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindMalformedInput Kind = "malformed_input"
	KindIOFailure      Kind = "io_failure"
	KindValidation     Kind = "validation_failure"
	KindUnsupported    Kind = "unsupported"
)

// Error is an error tagged with a Kind so boundaries can decide how to report it.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...), nil)
}

func Malformed(format string, args ...any) *Error {
	return New(KindMalformedInput, fmt.Sprintf(format, args...), nil)
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...), nil)
}

func Unsupported(format string, args ...any) *Error {
	return New(KindUnsupported, fmt.Sprintf(format, args...), nil)
}

// IO wraps a filesystem or database failure.
func IO(message string, err error) *Error {
	return New(KindIOFailure, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsUnsupported(err error) bool { return KindOf(err) == KindUnsupported }
func IsIOFailure(err error) bool   { return KindOf(err) == KindIOFailure }
func IsMalformed(err error) bool   { return KindOf(err) == KindMalformedInput }

// RPCCode maps an error to a JSON-RPC error code.
func RPCCode(err error) int64 {
	switch KindOf(err) {
	case KindNotFound, KindValidation, KindMalformedInput, KindUnsupported:
		return -32602
	default:
		return -32603
	}
}
