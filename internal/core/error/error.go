package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// PoisonedMessage is returned when shared state cannot be accessed safely.
	PoisonedMessage = "shared state unavailable, retry later"
)

// ErrLockPoisoned marks a guarded resource that was left in an indeterminate
// state by a failed writer.
var ErrLockPoisoned = errors.New("lock poisoned")

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err       error
	Status    int
	Message   string
	Retryable bool
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Poisoned reports that resource was found poisoned and the active recovery
// strategy refused to proceed. The error is retryable: only the current call
// is aborted.
func Poisoned(resource string, strategy fmt.Stringer) *AppError {
	return &AppError{
		Err:       fmt.Errorf("%w: resource %q (strategy %s)", ErrLockPoisoned, resource, strategy),
		Status:    http.StatusServiceUnavailable,
		Message:   PoisonedMessage,
		Retryable: true,
	}
}

// Recovered converts a recovered panic value into an internal error.
func Recovered(component string, v any) *AppError {
	return New(fmt.Errorf("%s panic: %v", component, v), http.StatusInternalServerError, SystemErrorMessage)
}

// IsRetryable reports whether any AppError in the chain is marked retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 500 for plain errors.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
