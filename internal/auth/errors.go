package auth

import "fmt"

// ConfigurationError reports that no complete client id/secret pair could be
// found. It is raised before any network call.
type ConfigurationError struct {
	Missing []string // which halves were not found: "client id", "client secret"
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no credentials available (missing %v): %v", e.Missing, e.Err)
	}
	return fmt.Sprintf("no credentials available (missing %v)", e.Missing)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// AuthError reports a failed credential exchange with the token endpoint.
type AuthError struct {
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token exchange rejected with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
