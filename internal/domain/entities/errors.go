package entities

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is returned when the server answers with a non-success status.
type StatusError struct {
	StatusCode int
	Message    string // server-provided detail, or the raw body
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("status code: %d, message: %s", e.StatusCode, e.Message)
}

// DecodeError is returned when a response body is not valid JSON or does not
// match the schema expected for the operation.
type DecodeError struct {
	Operation string
	Problems  []string
	Err       error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("decoding %s response: %v", e.Operation, e.Err)
	case len(e.Problems) > 0:
		return fmt.Sprintf("decoding %s response: %s", e.Operation, strings.Join(e.Problems, "; "))
	default:
		return fmt.Sprintf("decoding %s response", e.Operation)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsDecodeError reports whether err is a response decoding failure.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
