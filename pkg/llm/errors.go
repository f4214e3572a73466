package llm

import (
	"errors"
	"fmt"
)

// ErrResponseFormat is returned when a reply cannot be parsed into text by
// any known response shape.
var ErrResponseFormat = errors.New("unexpected response format")

// ErrEmptyReply is returned when a backend answers without any text.
var ErrEmptyReply = errors.New("empty reply")

// APIError is returned for non-success HTTP responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}
