package insights

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientContext is returned when no grounding context could be
	// assembled for a document, even after the ingestion fallback. Callers
	// should surface this as a distinct outcome, not a generic failure.
	ErrInsufficientContext = errors.New("insufficient context")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
)

// ValidationError represents a request validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
