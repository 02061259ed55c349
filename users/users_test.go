package users_test

import (
	"testing"

	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/users"
	fakeuserrepo "github.com/jrsteele09/go-admin-client/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Passw0rdOK", ""},
		{"too short", "Pa1", "at least 8 characters"},
		{"no upper", "password1", "uppercase"},
		{"no lower", "PASSWORD1", "lowercase"},
		{"no number", "Password", "number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUser_CheckPassword(t *testing.T) {
	hash, err := users.HashPassword("Secret123")
	require.NoError(t, err)

	u := &users.User{Email: "admin@example.com", PasswordHash: hash, Roles: []users.RoleType{users.RoleSuperAdmin}}
	require.True(t, u.CheckPassword("Secret123"))
	require.False(t, u.CheckPassword("secret123"))
	require.True(t, u.IsSuperAdmin())
	require.Equal(t, []string{"super_admin"}, u.RoleStrings())
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	u := &users.User{Email: "Owner@Example.com", Roles: []users.RoleType{users.RoleRestaurantOwner}}
	require.NoError(t, repo.Upsert(u))
	require.NotEmpty(t, u.ID)

	got, err := repo.GetByEmail("owner@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = repo.GetByID(u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)

	list, err := repo.List(0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete("owner@example.com"))
	_, err = repo.GetByEmail("owner@example.com")
	require.True(t, errors.Is(err, errors.ErrUserNotFound))
}
