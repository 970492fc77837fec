package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the stored token is missing, expired, or revoked.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("api: not found")
)

// APIError is a non-2xx response carrying the server's error payload.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: server returned status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a missing-entity error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
