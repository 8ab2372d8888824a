package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType defines the category of an error
type ErrorType string

// Error types
const (
	ParseError      ErrorType = "parse"
	ExtractionError ErrorType = "extraction"
	FetchFailure    ErrorType = "fetch"
	AttachmentError ErrorType = "attachment"
	TimeoutError    ErrorType = "timeout"
	ConfigError     ErrorType = "config"
	RenderError     ErrorType = "render"
)

// Common errors that can be used throughout the module
var (
	ErrNoDocument       = errors.New("no document to parse")
	ErrDocumentLarge    = errors.New("document too large")
	ErrNoContent        = errors.New("no content")
	ErrTimeout          = errors.New("operation timed out")
	ErrFetch            = errors.New("fetch failed")
	ErrAttachmentDecode = errors.New("malformed attachment data")
)

// FetchError reports a network failure, a non-200 response or an empty body.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.StatusCode != 200:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch %s: empty body", e.URL)
	}
}

// Unwrap exposes the cause.
func (e *FetchError) Unwrap() error { return e.Err }

// Is matches ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// AttachmentDecodeError reports a placeholder whose serialized record could
// not be decoded. It is recovered locally and never fails a parse.
type AttachmentDecodeError struct {
	Tag string
	Err error
}

func (e *AttachmentDecodeError) Error() string {
	return fmt.Sprintf("attachment %q: %v", e.Tag, e.Err)
}

// Unwrap exposes the cause.
func (e *AttachmentDecodeError) Unwrap() error { return e.Err }

// Is matches ErrAttachmentDecode.
func (e *AttachmentDecodeError) Is(target error) bool { return target == ErrAttachmentDecode }

// WrapError wraps an error with context information
func WrapError(err error, errorType ErrorType, funcName, message string) error {
	if err == nil {
		return nil
	}

	if message == "" {
		return fmt.Errorf("[%s:%s] %w", errorType, funcName, err)
	}

	return fmt.Errorf("[%s:%s] %s: %w", errorType, funcName, message, err)
}

// WrapParseError wraps a parsing error
func WrapParseError(err error, funcName, message string) error {
	return WrapError(err, ParseError, funcName, message)
}

// WrapExtractionError wraps an extraction error
func WrapExtractionError(err error, funcName, message string) error {
	return WrapError(err, ExtractionError, funcName, message)
}

// WrapFetchError wraps a fetch error
func WrapFetchError(err error, funcName, message string) error {
	return WrapError(err, FetchFailure, funcName, message)
}

// WrapAttachmentError wraps an attachment decoding error
func WrapAttachmentError(err error, funcName, message string) error {
	return WrapError(err, AttachmentError, funcName, message)
}

// WrapConfigError wraps a configuration error
func WrapConfigError(err error, funcName, message string) error {
	return WrapError(err, ConfigError, funcName, message)
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), fmt.Sprintf("[%s:", errorType))
}

// IsParseError returns true if the error is a parse error
func IsParseError(err error) bool {
	return IsErrorType(err, ParseError)
}

// IsExtractionError returns true if the error is an extraction error
func IsExtractionError(err error) bool {
	return IsErrorType(err, ExtractionError)
}

// IsFetchError returns true if the error is a fetch failure
func IsFetchError(err error) bool {
	return errors.Is(err, ErrFetch) || IsErrorType(err, FetchFailure)
}
