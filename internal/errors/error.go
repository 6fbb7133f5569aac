package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRoute  Category = "route"
	CategoryConfig Category = "config"
	CategoryBridge Category = "bridge"
	CategoryCLI    Category = "cli"
)

// HistrouteError is a structured error with a code, explanation and
// optional fix suggestion.
type HistrouteError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, usually naming the offending value.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *HistrouteError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *HistrouteError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a *HistrouteError with the same code.
func (e *HistrouteError) Is(target error) bool {
	t, ok := target.(*HistrouteError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *HistrouteError) WithSuggestion(s string) *HistrouteError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *HistrouteError) WithDetail(d string) *HistrouteError {
	e.Detail = d
	return e
}

// WithDetailf is WithDetail with formatting.
func (e *HistrouteError) WithDetailf(format string, args ...any) *HistrouteError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// Wrap wraps another error.
func (e *HistrouteError) Wrap(err error) *HistrouteError {
	e.Wrapped = err
	return e
}

// New creates a HistrouteError from a registered error code.
func New(code string) *HistrouteError {
	template, ok := registry[code]
	if !ok {
		return &HistrouteError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &HistrouteError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
	}
}

// Newf creates a new HistrouteError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *HistrouteError {
	return &HistrouteError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a HistrouteError.
// An error that already is (or wraps) a HistrouteError is returned as is.
func FromError(err error, code string) *HistrouteError {
	if err == nil {
		return nil
	}
	var he *HistrouteError
	if errors.As(err, &he) {
		return he
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first HistrouteError in err's chain, or "".
func Code(err error) string {
	var he *HistrouteError
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}
