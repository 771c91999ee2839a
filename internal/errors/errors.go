// Package errors provides coded domain errors for the agent. Each package
// declares its own ErrorCode constants prefixed with the package name; the
// factory attaches codes, wrapped causes and structured data to errors so the
// logger can emit them uniformly.
package errors

import (
	"errors"
	"fmt"
)

// Re-exported standard library checks so callers need only one errors import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// ErrorCode identifies an error class, e.g. "audio_capture_failed".
type ErrorCode string

// Error is a coded error with optional cause and structured data.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory creates coded errors.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}

type codedError struct {
	code    ErrorCode
	message string
	err     error
	data    any
}

func (e *codedError) Error() string {
	msg := e.message
	if msg == "" {
		msg = messageFor(e.code)
	}

	if e.data != nil {
		return fmt.Sprintf("%s: %v", msg, e.data)
	}

	if e.err != nil {
		return fmt.Sprintf("%s: %v", msg, e.err)
	}

	return msg
}

func (e *codedError) Code() ErrorCode {
	return e.code
}

func (e *codedError) WithMessage(msg string) Error {
	return &codedError{
		code:    e.code,
		message: msg,
		err:     e.err,
		data:    e.data,
	}
}

func (e *codedError) WithData(data any) Error {
	return &codedError{
		code:    e.code,
		message: e.message,
		err:     e.err,
		data:    data,
	}
}

func (e *codedError) GetData() any {
	return e.data
}

func (e *codedError) Unwrap() error {
	return e.err
}

type defaultFactory struct{}

func (*defaultFactory) New(code ErrorCode) Error {
	return &codedError{code: code}
}

func (*defaultFactory) Wrap(code ErrorCode, err error) Error {
	return &codedError{code: code, err: err}
}

func (*defaultFactory) WithMessage(code ErrorCode, msg string) Error {
	return &codedError{code: code, message: msg}
}

func (*defaultFactory) WithData(code ErrorCode, data any) Error {
	return &codedError{code: code, data: data}
}

// New creates a Factory instance for error creation
func New() Factory {
	return &defaultFactory{}
}

// CodeOf returns the code carried by err, or "" if err carries none.
func CodeOf(err error) ErrorCode {
	var coded Error
	if As(err, &coded) {
		return coded.Code()
	}

	return ""
}
