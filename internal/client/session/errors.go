package session

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the server rejected
	// the username or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginFailed wraps every other login failure.
	ErrLoginFailed = errors.New("login failed")
	// ErrInvalidResponse marks a login response that failed validation.
	ErrInvalidResponse = errors.New("invalid login response")
	// ErrNotPersisted marks a login whose credentials could not be stored.
	ErrNotPersisted = errors.New("credentials not persisted")
)

// Message turns a Login error into text suitable for display.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password."
	default:
		return "Login failed."
	}
}
