// Package exitcode maps command outcomes to process exit codes.
package exitcode

import (
	"errors"

	"questctl/internal/service"
)

const (
	Success = 0

	// UserError covers bad arguments, unknown quests and 4xx rejections.
	UserError = 1

	// AuthError covers a missing, rejected or expired session.
	AuthError = 2

	// BackendError covers 5xx answers, network failures and timeouts.
	BackendError = 3
)

// For classifies an error returned by the admin API.
func For(err error) int {
	if err == nil {
		return Success
	}
	if service.IsUnauthorized(err) {
		return AuthError
	}
	if errors.Is(err, service.ErrNotFound) {
		return UserError
	}
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return UserError
	}
	return BackendError
}
