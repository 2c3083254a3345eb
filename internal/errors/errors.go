// Package errors defines the failure taxonomy of a streak scan.
//
// Per-file and per-region failures are isolated by the pipeline: an
// ErrorTypeImageRead error skips one file, an ErrorTypeDegenerateRegion
// error drops one region from normalization output. Only ErrorTypeReportWrite
// is fatal to a run.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeImageRead        ErrorType = "image_read"
	ErrorTypeDegenerateRegion ErrorType = "degenerate_region"
	ErrorTypeDirectory        ErrorType = "directory"
	ErrorTypeReportWrite      ErrorType = "report_write"
	ErrorTypeConfig           ErrorType = "config"
)

// AppError represents a structured scan error
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewImageReadError reports a file that is missing, unreadable or not decodable.
func NewImageReadError(path string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeImageRead,
		Message: "cannot read image",
		Path:    path,
		Cause:   cause,
	}
}

// NewDegenerateRegionError reports a region that cannot be normalized.
func NewDegenerateRegionError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeDegenerateRegion,
		Message: message,
	}
}

// NewDirectoryError reports a partition or profile directory that cannot be created.
func NewDirectoryError(path string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDirectory,
		Message: "cannot prepare directory",
		Path:    path,
		Cause:   cause,
	}
}

// NewReportWriteError reports a report file that cannot be written.
func NewReportWriteError(path string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeReportWrite,
		Message: "cannot write report",
		Path:    path,
		Cause:   cause,
	}
}

// NewConfigError reports an invalid configuration value.
func NewConfigError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
	}
}

// IsType checks if any error in the chain is an AppError of the given type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}
