package util

import (
	"errors"
	"fmt"
)

// ErrorContext provides standardized error formatting for different operations
type ErrorContext string

const (
	ConfigError     ErrorContext = "Config"
	FileError       ErrorContext = "File"
	NetworkError    ErrorContext = "Network"
	ValidationError ErrorContext = "Validation"
	DaemonError     ErrorContext = "Daemon"
	MailError       ErrorContext = "Mail"
	EpubError       ErrorContext = "Epub"
)

// Error is an error tagged with the operation that failed and its category
type Error struct {
	Context ErrorContext
	Op      string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s error: %s", e.Context, e.Op)
	}
	return FormatError(e.Context, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with a context and operation, returns nil for a nil err
func Wrap(context ErrorContext, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Context: context, Op: operation, Err: err}
}

// Errorf creates a tagged error from a format string
func Errorf(context ErrorContext, operation string, format string, args ...interface{}) error {
	return &Error{Context: context, Op: operation, Err: fmt.Errorf(format, args...)}
}

// ContextOf returns the context of the outermost tagged error in the chain,
// or an empty context if there is none
func ContextOf(err error) ErrorContext {
	var e *Error
	if errors.As(err, &e) {
		return e.Context
	}
	return ""
}

// FormatError creates a standardized error message with context
func FormatError(context ErrorContext, operation string, err error) string {
	return fmt.Sprintf("%s error: %s - %v", context, operation, err)
}

// FormatErrorf creates a standardized error message with context and format
func FormatErrorf(context ErrorContext, operation string, format string, args ...interface{}) string {
	message := fmt.Sprintf(format, args...)
	return fmt.Sprintf("%s error: %s - %s", context, operation, message)
}

// LogError logs an error using the standard format
func LogError(context ErrorContext, operation string, err error) {
	Red.Println(FormatError(context, operation, err))
}

// LogErrorf logs an error using the standard format with formatting
func LogErrorf(context ErrorContext, operation string, format string, args ...interface{}) {
	Red.Println(FormatErrorf(context, operation, format, args...))
}
