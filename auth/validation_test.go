package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-admin-client/auth"
	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateUserCredentials(t *testing.T) {
	v := auth.NewValidator()

	tests := []struct {
		name     string
		id       string
		password string
		wantErr  string
	}{
		{name: "valid", id: "admin@example.com", password: "secret"},
		{name: "missing id", id: "  ", password: "secret", wantErr: "id is required"},
		{name: "not an email", id: "admin", password: "secret", wantErr: "invalid email format"},
		{name: "missing password", id: "admin@example.com", wantErr: "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateLoginRequest(oauthmodel.LoginRequest{ID: tt.id, Password: tt.password})
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidator_ValidateRefreshRequest(t *testing.T) {
	v := auth.NewValidator()

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.ValidateRefreshRequest(oauthmodel.RefreshRequest{RefreshToken: "0123456789abcdef"}))
	})

	t.Run("missing", func(t *testing.T) {
		err := v.ValidateRefreshRequest(oauthmodel.RefreshRequest{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "refresh_token is required")
	})

	t.Run("too short", func(t *testing.T) {
		err := v.ValidateRefreshRequest(oauthmodel.RefreshRequest{RefreshToken: "abc"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid refresh_token format")
	})
}

func TestValidator_ValidateAccessToken(t *testing.T) {
	v := auth.NewValidator()

	require.NoError(t, v.ValidateAccessToken("aaa.bbb.ccc"))
	require.Error(t, v.ValidateAccessToken(""))
	require.Error(t, v.ValidateAccessToken("aaa.bbb"))
	require.Error(t, v.ValidateAccessToken("aaa..ccc"))
}

func TestValidator_ValidateUserState(t *testing.T) {
	v := auth.NewValidator()

	require.ErrorIs(t, v.ValidateUserState(nil), auth.UserNotFoundErr)
	require.ErrorIs(t, v.ValidateUserState(&users.User{Blocked: true}), auth.UserBlockedErr)
	require.NoError(t, v.ValidateUserState(&users.User{}))
}
