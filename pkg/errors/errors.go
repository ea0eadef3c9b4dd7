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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"
	ErrLocked       ErrorCode = "LOCKED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"

	// Backup errors
	ErrBackupFailed   ErrorCode = "BACKUP_FAILED"
	ErrBackupNotFound ErrorCode = "BACKUP_NOT_FOUND"

	// Subscription errors
	ErrURLInvalid     ErrorCode = "URL_INVALID"
	ErrDownload       ErrorCode = "DOWNLOAD"
	ErrContentInvalid ErrorCode = "CONTENT_INVALID"

	// Consistency errors
	ErrRegistryPersist ErrorCode = "REGISTRY_PERSIST"
	ErrRollbackFailed  ErrorCode = "ROLLBACK_FAILED"
	ErrRegistryDesync  ErrorCode = "REGISTRY_DESYNC"
)

// HostsubError represents a structured error with code and details
type HostsubError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *HostsubError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *HostsubError) Unwrap() error {
	return e.Wrapped
}

// Is matches on error code, so errors.Is(err, errors.New(ErrNotFound, "")) works
// regardless of message.
func (e *HostsubError) Is(target error) bool {
	var targetErr *HostsubError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new HostsubError with the given code and message
func New(code ErrorCode, message string) *HostsubError {
	return &HostsubError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new HostsubError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *HostsubError {
	return &HostsubError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a HostsubError
func Wrap(err error, code ErrorCode, message string) *HostsubError {
	if err == nil {
		return nil
	}
	return &HostsubError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *HostsubError {
	if err == nil {
		return nil
	}
	return &HostsubError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *HostsubError) WithDetail(key string, value interface{}) *HostsubError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code anywhere in its chain.
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var hostsubErr *HostsubError
		if !errors.As(err, &hostsubErr) {
			return false
		}
		if hostsubErr.Code == code {
			return true
		}
		err = hostsubErr.Wrapped
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if err is not a HostsubError
func GetErrorCode(err error) ErrorCode {
	var hostsubErr *HostsubError
	if errors.As(err, &hostsubErr) {
		return hostsubErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a HostsubError
func GetErrorDetails(err error) map[string]interface{} {
	var hostsubErr *HostsubError
	if errors.As(err, &hostsubErr) {
		return hostsubErr.Details
	}
	return nil
}

// IsSevere reports errors that leave the hosts file and the registry
// disagreeing and need a human to repair.
func IsSevere(err error) bool {
	return IsErrorCode(err, ErrRegistryDesync) || IsErrorCode(err, ErrRollbackFailed)
}
