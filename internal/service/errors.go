package service

import (
	"errors"
	"fmt"

	"geo2max-server/internal/remote"
)

// RemoteAuthError means the remote credential was rejected. The caller
// has to reconnect their account; nothing is retried.
type RemoteAuthError struct {
	Message string
}

func (e *RemoteAuthError) Error() string {
	return fmt.Sprintf("remote credential rejected: %s", e.Message)
}

// RemoteUnavailableError covers transport failures, rate limiting and
// remote server errors, carrying the remote-provided message.
type RemoteUnavailableError struct {
	Message string
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote unavailable: %s", e.Message)
}

// StoreError wraps a persistence failure. A sync hitting one reports
// nothing inserted rather than guessing.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure (%s): %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// InvalidFilterError reports a structured search filter that failed to
// parse. Queries degrade to an empty result carrying the diagnostic
// instead of failing outright.
type InvalidFilterError struct {
	Message string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter: %s", e.Message)
}

// mapRemoteError lifts errors from the remote client into the service
// taxonomy the handlers act on.
func mapRemoteError(err error) error {
	var authErr *remote.AuthError
	if errors.As(err, &authErr) {
		return &RemoteAuthError{Message: authErr.Message}
	}

	var unavailErr *remote.UnavailableError
	if errors.As(err, &unavailErr) {
		return &RemoteUnavailableError{Message: unavailErr.Message}
	}

	return &RemoteUnavailableError{Message: err.Error()}
}
