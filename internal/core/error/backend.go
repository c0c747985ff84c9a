package errx

import "fmt"

// BackendStatusError reports a non-2xx response from the model runtime,
// carrying the status and (truncated) body for diagnostics.
type BackendStatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *BackendStatusError) Error() string {
	return fmt.Sprintf("model runtime error: status %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrBackendError) match any runtime status failure.
func (e *BackendStatusError) Is(target error) bool {
	return target == ErrBackendError
}
