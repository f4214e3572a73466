package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError lists every invalid configuration field.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration validation failed with %d errors:\n  - %s",
		len(e.Errors), strings.Join(e.Errors, "\n  - "))
}

// HasError reports whether any message mentions field.
func (e *ValidationError) HasError(field string) bool {
	for _, err := range e.Errors {
		if strings.Contains(err, field) {
			return true
		}
	}
	return false
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
