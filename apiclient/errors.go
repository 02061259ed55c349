package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionEnded is returned for every request after Logout or an unrecoverable refresh failure,
	// until the next successful Login.
	ErrSessionEnded = errors.New("session ended")
	// ErrNotAuthenticated is returned when an operation needs credentials and none are held.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoRefreshToken is returned when a refresh is needed but no refresh token is held.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrUnauthorized is wrapped by AuthError when the server rejects credentials with a 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthError reports a login or refresh rejected by the server, or a 401 that cannot be recovered
// by refreshing (an exempt endpoint or an already retried request).
type AuthError struct {
	Op         string // "login", "refresh" or "request"
	StatusCode int    // zero when the failure happened before any response
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	msg := "auth " + e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// APIError is any non-2xx response other than a recoverable 401. It is passed through verbatim.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// NetworkError is a transport-level failure such as a timeout or refused connection.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is, or wraps, an *AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// StatusCode returns the HTTP status carried by an AuthError or APIError, or zero.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.StatusCode
	}
	return 0
}
