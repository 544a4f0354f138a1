package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the area an error belongs to.
type Category string

const (
	CategoryHook      Category = "hook"
	CategorySWR       Category = "swr"
	CategoryStorage   Category = "storage"
	CategoryConfig    Category = "config"
	CategoryTransport Category = "transport"
	CategoryCLI       Category = "cli"
)

// HookError is a structured error with a registered code.
type HookError struct {
	// Code is a unique identifier such as "U001".
	Code string

	// Category is the subsystem the error belongs to.
	Category Category

	// Message is a short description.
	Message string

	// Detail is a longer explanation, usually carrying the offending values.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying cause, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped cause for errors.Is/As.
func (e *HookError) Unwrap() error {
	return e.Wrapped
}

// Is matches another *HookError with the same non-empty code.
func (e *HookError) Is(target error) bool {
	t, ok := target.(*HookError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithDetail sets the detailed explanation.
func (e *HookError) WithDetail(d string) *HookError {
	e.Detail = d
	return e
}

// WithDetailf sets a formatted detailed explanation.
func (e *HookError) WithDetailf(format string, args ...any) *HookError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion sets the fix hint.
func (e *HookError) WithSuggestion(s string) *HookError {
	e.Suggestion = s
	return e
}

// Wrap records err as the cause.
func (e *HookError) Wrap(err error) *HookError {
	e.Wrapped = err
	return e
}

// New creates a HookError from a registered code.
func New(code string) *HookError {
	template, ok := registry[code]
	if !ok {
		return &HookError{Code: code, Message: "Unknown error"}
	}
	return &HookError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
	}
}

// Newf creates an uncoded HookError with a formatted message.
func Newf(category Category, format string, args ...any) *HookError {
	return &HookError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError returns err unchanged if it already is a *HookError, and
// otherwise wraps it under code.
func FromError(err error, code string) *HookError {
	if err == nil {
		return nil
	}
	var he *HookError
	if stderrors.As(err, &he) {
		return he
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first *HookError in err's chain, or "".
func Code(err error) string {
	var he *HookError
	if stderrors.As(err, &he) {
		return he.Code
	}
	return ""
}
