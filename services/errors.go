package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the scoring and submission services. Controllers
// map these to HTTP statuses; DependencyFailure is never retried here since
// a retry could duplicate a non-idempotent write.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrInvalidMetricInput = errors.New("invalid metric input")
	ErrDependencyFailure  = errors.New("dependency failure")
)

// ValidationError reports user-correctable input problems. The message is
// safe to surface verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
