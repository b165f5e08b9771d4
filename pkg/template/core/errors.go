// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"fmt"
	"strings"

	"carvel.dev/liquid/pkg/filepos"
)

type ErrorKind string

const (
	LexError    ErrorKind = "LexError"
	SyntaxError ErrorKind = "SyntaxError"
	NameError   ErrorKind = "NameError"
	RenderError ErrorKind = "RenderError"
)

type ErrorCode string

const (
	UnterminatedTag   ErrorCode = "UnterminatedTag"
	UnknownTag        ErrorCode = "UnknownTag"
	TagWrongPosition  ErrorCode = "TagWrongPosition"
	TagUnclosed       ErrorCode = "TagUnclosed"
	EndTagUnexpected  ErrorCode = "EndTagUnexpected"
	BadExpression     ErrorCode = "BadExpression"
	UndefinedVariable ErrorCode = "UndefinedVariable"
	UndefinedFilter   ErrorCode = "UndefinedFilter"
	TypeMismatch      ErrorCode = "TypeMismatch"
	FilterFailed      ErrorCode = "FilterFailed"
	TagFailed         ErrorCode = "TagFailed"
)

// Error is the structured error returned while lexing, building or
// rendering a template.
type Error struct {
	Kind     ErrorKind
	Code     ErrorCode
	Msg      string
	Name     string // offending tag, variable or filter name
	Position *filepos.Position
	Hint     string
	Cause    error
}

var _ error = &Error{}

func NewError(kind ErrorKind, code ErrorCode, msg string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Msg: fmt.Sprintf(msg, args...)}
}

func (e *Error) WithName(name string) *Error {
	e.Name = name
	return e
}

func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithPosition sets the position unless one was already recorded closer to
// the failure.
func (e *Error) WithPosition(pos *filepos.Position) *Error {
	if !e.Position.IsKnown() {
		e.Position = pos
	}
	return e
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Error() string {
	hintMsg := ""
	if len(e.Hint) > 0 {
		hintMsg = fmt.Sprintf(" (hint: %s)", e.Hint)
	}

	result := []string{fmt.Sprintf("- %s: %s%s", e.Kind, e.Msg, hintMsg)}

	if e.Position.IsKnown() {
		linePad := "    "
		result = append(result, fmt.Sprintf("%s%s | %s",
			linePad, e.Position.AsCompactString(), strings.TrimRight(e.Position.GetLine(), "\r")))
	}

	if e.Cause != nil {
		causeMsg := e.Cause.Error()
		if typedCause, ok := e.Cause.(*Error); ok && !typedCause.Position.IsKnown() {
			causeMsg = typedCause.Msg
		}
		result = append(result, []string{"", "    reason:"}...)
		for _, line := range strings.Split(causeMsg, "\n") {
			result = append(result, fmt.Sprintf("     %s", line))
		}
	}

	return strings.Join(result, "\n")
}

// AsError finds a *Error in the chain of err.
func AsError(err error) (*Error, bool) {
	var typedErr *Error
	if errors.As(err, &typedErr) {
		return typedErr, true
	}
	return nil, false
}

// IsKind reports whether err carries a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	typedErr, ok := AsError(err)
	return ok && typedErr.Kind == kind
}

// IsCode reports whether err carries a *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	typedErr, ok := AsError(err)
	return ok && typedErr.Code == code
}

// PositionedError attaches pos to err, converting foreign errors into
// render errors. Errors that already carry a position keep it.
func PositionedError(err error, pos *filepos.Position) error {
	if err == nil {
		return nil
	}
	if typedErr, ok := AsError(err); ok {
		return typedErr.WithPosition(pos)
	}
	return NewError(RenderError, "", "%s", err).WithPosition(pos)
}
