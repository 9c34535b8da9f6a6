package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the session token was rejected.
	ErrUnauthorized = errors.New("session expired")

	// ErrNotFound means the backend answered 404.
	ErrNotFound = errors.New("not found")

	// ErrVideoLookupDisabled means no YouTube API key is configured.
	ErrVideoLookupDisabled = errors.New("youtube lookups disabled (set youtube_api_key)")
)

// APIError is a non-2xx answer that is neither 401 nor 404.
// Detail is the server's explanation, or the status line when it gave none.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return e.Detail
}

// IsUnauthorized reports whether err means the session must be discarded.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
