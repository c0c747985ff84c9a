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
	// UnauthorizedMessage is returned when the shared service key does not match.
	UnauthorizedMessage = "Unauthorized: Invalid or missing API Key"
)

// Sentinel errors for the relay failure taxonomy. They classify what went
// wrong; callers match them with errors.Is and decide policy one layer up.
var (
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBackendUnavailable = errors.New("model runtime unreachable")
	ErrBackendError       = errors.New("model runtime error")
	ErrBackendProtocol    = errors.New("model runtime returned an unexpected payload")
	ErrTurnInFlight       = errors.New("a tutor turn is already in flight for this channel")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
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

// BadRequest builds an AppError for a caller mistake with a safe message.
func BadRequest(message string) *AppError {
	return New(ErrBadRequest, http.StatusBadRequest, message)
}

// Unauthorized builds an AppError for a rejected credential.
func Unauthorized() *AppError {
	return New(ErrUnauthorized, http.StatusUnauthorized, UnauthorizedMessage)
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
