package oauthmodel

// LoginRequest is the body sent to the session login endpoint.
type LoginRequest struct {
	// ID identifies the admin account, typically an email address.
	ID string `json:"id"`

	// Password is the account secret.
	// Security: Never log or expose this value
	Password string `json:"password"`
}

// RefreshRequest is the body sent to the token refresh endpoint.
type RefreshRequest struct {
	// RefreshToken is the currently held refresh token.
	// Behavior: Typically rotated - old refresh token invalidated, new one issued
	RefreshToken string `json:"refresh_token"`
}
