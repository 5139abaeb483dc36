// Package errors provides domain-specific error types for keen-threatfeed.
//
// Errors carry a code so callers can classify a failure (connectivity,
// validator, download, state) without string matching.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeState indicates a failure reading or writing persisted refresh state.
	ErrCodeState ErrorCode = "STATE_ERROR"

	// ErrCodeConnectivity indicates the connectivity probe host could not be reached.
	ErrCodeConnectivity ErrorCode = "CONNECTIVITY_ERROR"

	// ErrCodeValidator indicates the remote validator token (ETag) could not be read.
	ErrCodeValidator ErrorCode = "VALIDATOR_ERROR"

	// ErrCodeDownload indicates the feed could not be fetched or written to disk.
	ErrCodeDownload ErrorCode = "DOWNLOAD_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// HasCode reports whether err or any error it wraps carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewStateError creates a new persisted state error.
func NewStateError(message string, cause error) *Error {
	return Wrap(ErrCodeState, message, cause)
}

// NewConnectivityError creates a new connectivity probe error.
func NewConnectivityError(message string, cause error) *Error {
	return Wrap(ErrCodeConnectivity, message, cause)
}

// NewValidatorError creates a new validator token error.
func NewValidatorError(message string, cause error) *Error {
	return Wrap(ErrCodeValidator, message, cause)
}

// NewDownloadError creates a new download error.
func NewDownloadError(message string, cause error) *Error {
	return Wrap(ErrCodeDownload, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
