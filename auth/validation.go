package auth

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/jrsteele09/go-admin-client/users"
)

const minRefreshTokenLength = 10

// Validator holds the request checks applied by the login and refresh endpoints.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLoginRequest validates the login body
func (v *Validator) ValidateLoginRequest(req oauthmodel.LoginRequest) error {
	return v.ValidateUserCredentials(req.ID, req.Password)
}

// ValidateRefreshRequest validates the refresh body
func (v *Validator) ValidateRefreshRequest(req oauthmodel.RefreshRequest) error {
	if req.RefreshToken == "" {
		return fmt.Errorf("refresh_token is required")
	}

	if len(req.RefreshToken) < minRefreshTokenLength {
		return fmt.Errorf("invalid refresh_token format")
	}

	return nil
}

// ValidateAccessToken validates access token format and presence
func (v *Validator) ValidateAccessToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("access token is required")
	}

	// Basic format check - should be a JWT (3 parts separated by dots)
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("invalid token format: must be a valid JWT")
	}

	for i, part := range parts {
		if len(part) == 0 {
			return fmt.Errorf("invalid token format: part %d is empty", i+1)
		}
	}

	return nil
}

// ValidateUserCredentials validates login credentials
func (v *Validator) ValidateUserCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("id is required")
	}

	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return fmt.Errorf("invalid email format")
	}

	if password == "" {
		return fmt.Errorf("password is required")
	}

	return nil
}

// ValidateUserState validates user account state
func (v *Validator) ValidateUserState(user *users.User) error {
	if user == nil {
		return UserNotFoundErr
	}

	if user.Blocked {
		return UserBlockedErr
	}

	return nil
}
