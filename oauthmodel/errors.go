package oauthmodel

// Error codes carried in ErrorResponse.Error
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeInvalidGrant   = "invalid_grant"
	ErrCodeInvalidToken   = "invalid_token"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeServerError    = "server_error"
)

// ErrorResponse is the JSON error body returned by the remote API.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Message returns the most descriptive text available.
func (e ErrorResponse) Message() string {
	if e.ErrorDescription != "" {
		return e.ErrorDescription
	}
	return e.Error
}
