package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Host errors
	ErrNotManagingGame ErrorCode = "NOT_MANAGING_GAME"
	ErrStateLoad       ErrorCode = "STATE_LOAD"
	ErrStateSave       ErrorCode = "STATE_SAVE"
	ErrModCreate       ErrorCode = "MOD_CREATE"
	ErrNoInstallPath   ErrorCode = "NO_INSTALL_PATH"

	// Deployment errors
	ErrAssemblyList ErrorCode = "ASSEMBLY_LIST"
	ErrAssemblyCopy ErrorCode = "ASSEMBLY_COPY"
	ErrSentinel     ErrorCode = "SENTINEL_WRITE"
	ErrStaging      ErrorCode = "STAGING"

	// Patcher errors
	ErrPatcherExec ErrorCode = "PATCHER_EXEC"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileCreate ErrorCode = "FILE_CREATE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// PatcherError represents a structured error with code and details
type PatcherError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PatcherError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PatcherError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PatcherError) Is(target error) bool {
	var targetErr *PatcherError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PatcherError with the given code and message
func New(code ErrorCode, message string) *PatcherError {
	return &PatcherError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PatcherError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PatcherError {
	return &PatcherError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PatcherError
func Wrap(err error, code ErrorCode, message string) *PatcherError {
	if err == nil {
		return nil
	}
	return &PatcherError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PatcherError {
	if err == nil {
		return nil
	}
	return &PatcherError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PatcherError) WithDetail(key string, value interface{}) *PatcherError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var patcherErr *PatcherError
	if errors.As(err, &patcherErr) {
		return patcherErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PatcherError
func GetErrorCode(err error) ErrorCode {
	var patcherErr *PatcherError
	if errors.As(err, &patcherErr) {
		return patcherErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PatcherError
func GetErrorDetails(err error) map[string]interface{} {
	var patcherErr *PatcherError
	if errors.As(err, &patcherErr) {
		return patcherErr.Details
	}
	return nil
}
