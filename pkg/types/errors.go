package types

import "fmt"

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeExternal   ErrorType = "external"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// PlatformError represents a structured error in the Medisphere system
type PlatformError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *PlatformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *PlatformError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string, details map[string]interface{}) *PlatformError {
	return &PlatformError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(code, message string) *PlatformError {
	return &PlatformError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(code, message string) *PlatformError {
	return &PlatformError{
		Type:    ErrorTypeConflict,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *PlatformError {
	return &PlatformError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// LogReadError indicates the mirror node read path failed at the
// transport level (network, timeout, non-2xx). It is an infrastructure
// failure, never a verification verdict.
type LogReadError struct {
	TopicID       string
	TransactionID string
	Cause         error
}

func (e *LogReadError) Error() string {
	return fmt.Sprintf("mirror node read failed for topic %s transaction %s: %v", e.TopicID, e.TransactionID, e.Cause)
}

func (e *LogReadError) Unwrap() error {
	return e.Cause
}

// ContentFetchError indicates the content-addressed storage fetch
// failed. Callers must not report this as a hash mismatch: a storage
// outage means "could not check", not "checked and it's wrong".
type ContentFetchError struct {
	ContentID string
	Cause     error
}

func (e *ContentFetchError) Error() string {
	return fmt.Sprintf("content fetch failed for %s: %v", e.ContentID, e.Cause)
}

func (e *ContentFetchError) Unwrap() error {
	return e.Cause
}

// SubmitError indicates an anchor submission to the consensus log was
// rejected or never acknowledged.
type SubmitError struct {
	TopicID string
	Cause   error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("anchor submission to topic %s failed: %v", e.TopicID, e.Cause)
}

func (e *SubmitError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeExternalError    = "EXTERNAL_ERROR"
	ErrCodeTimeout          = "TIMEOUT"
)
