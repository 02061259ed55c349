package oauthmodel

// TokenResponse is the body returned by the login and refresh endpoints.
// It follows the OAuth2 token endpoint response format (RFC 6749 section 5.1).
type TokenResponse struct {
	// AccessToken is the short-lived bearer credential attached to each API call.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken *string `json:"access_token,omitempty"`

	// TokenType indicates how to use the access token (always "bearer" in practice).
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Note: This is a hint - the JWT's "exp" claim, when present, is authoritative
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken is an opaque token used solely to obtain new access tokens.
	// Absent on a refresh response when the server does not rotate refresh tokens,
	// in which case the client keeps the one it already holds.
	RefreshToken *string `json:"refresh_token,omitempty"`
}
