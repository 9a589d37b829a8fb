package engine

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports malformed scoring input
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// newValidationError wraps a validator error for the named input
func newValidationError(field string, err error) *ValidationError {
	msg := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		msg = fmt.Sprintf("field %s failed on %s", verrs[0].Field(), verrs[0].Tag())
	}
	return &ValidationError{Field: field, Message: msg, Err: err}
}

// requiredError reports a missing input
func requiredError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required"}
}
