package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is returned for any HTTP 401 from the API
var ErrUnauthorized = errors.New("api: unauthorized")

// ResponseError is a non-2xx response carrying the API's own message, if any
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// MessageOr returns the server-provided message carried by err, or fallback
// for every other kind of failure.
func MessageOr(err error, fallback string) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) && respErr.Message != "" {
		return respErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether err is an authentication failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func statusError(status int, message string) error {
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return &ResponseError{StatusCode: status, Message: message}
}
