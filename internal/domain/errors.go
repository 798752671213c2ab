package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures so the HTTP boundary can map them to a
// response without inspecting messages.
type ErrorType string

const (
	ErrTypeIngestion  ErrorType = "ingestion"
	ErrTypeOCR        ErrorType = "ocr"
	ErrTypeValidation ErrorType = "validation"
	ErrTypeAPI        ErrorType = "api"
	ErrTypeConfig     ErrorType = "config"
	ErrTypeIO         ErrorType = "io"
)

// Error is the common error value used across the pipeline.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IngestionError reports a PDF rasterization failure. Not retried.
func IngestionError(message string, cause error) error {
	return &Error{Type: ErrTypeIngestion, Message: message, Cause: cause}
}

// OCRError reports a text recognition failure on a rendered page.
func OCRError(message string, cause error) error {
	return &Error{Type: ErrTypeOCR, Message: message, Cause: cause}
}

// ValidationError reports invalid input.
func ValidationError(message string, cause error) error {
	return &Error{Type: ErrTypeValidation, Message: message, Cause: cause}
}

// APIError reports a vendor API failure.
func APIError(message string, cause error) error {
	return &Error{Type: ErrTypeAPI, Message: message, Cause: cause}
}

// ConfigError reports missing or invalid configuration.
func ConfigError(message string, cause error) error {
	return &Error{Type: ErrTypeConfig, Message: message, Cause: cause}
}

// IOError reports a filesystem failure.
func IOError(message string, cause error) error {
	return &Error{Type: ErrTypeIO, Message: message, Cause: cause}
}

// IsType reports whether err (or any error it wraps) carries the given type.
func IsType(err error, t ErrorType) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Type == t
	}
	return false
}
