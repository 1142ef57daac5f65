package errors

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy

var (
	// ErrFetchFailed indicates a provider call failed after exhausting retries
	ErrFetchFailed = errors.New("fetch failed")

	// ErrRateLimitExceeded indicates a provider rejected the call with HTTP 429
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrProviderData indicates a provider returned a malformed or unexpected payload
	ErrProviderData = errors.New("malformed provider data")

	// ErrInsufficientData indicates there is not enough data to derive features
	ErrInsufficientData = errors.New("insufficient data")

	// ErrModelUnavailable indicates no learned model artifact is configured or present.
	// Callers treat this as a signal to use the baseline path, not as a failure.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")
)

// DomainError wraps an error with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
