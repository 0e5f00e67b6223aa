package remote

import "fmt"

// AuthError reports a credential the remote API rejected. The caller
// has to reconnect; the request is not retried.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("remote rejected credential: %s", e.Message)
}

// UnavailableError covers transport failures, rate limiting and remote
// server errors. Message carries whatever the remote reported.
type UnavailableError struct {
	StatusCode int
	Message    string
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote unavailable (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote unavailable: %s", e.Message)
}

// NotFoundError reports a stream request for an activity the remote
// does not know.
type NotFoundError struct {
	ActivityID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("activity %d not found on remote", e.ActivityID)
}
