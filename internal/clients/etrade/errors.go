package etrade

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned by every privileged call made while the
	// session is not authenticated. No request is sent in that case.
	ErrNotAuthenticated = errors.New("user is not authenticated")

	// ErrAlreadyAuthenticated is returned by Login when a session is already
	// established. Call Logout first to start a new one.
	ErrAlreadyAuthenticated = errors.New("user is already authenticated")

	// ErrLoginInProgress is returned by Login while another Login is waiting
	// for its verifier.
	ErrLoginInProgress = errors.New("login already in progress")
)

// ValidationError reports a caller argument that violates an API constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// TransportError reports a non-2xx HTTP response.
type TransportError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Status)
}

// truncate keeps log lines bounded when the API answers with a full HTML page.
func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
