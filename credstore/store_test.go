package credstore_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-client/credstore"
	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "bearer",
		Expiry:       time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) credstore.Store{
		"memory": func(t *testing.T) credstore.Store { return credstore.NewMemoryStore() },
		"file": func(t *testing.T) credstore.Store {
			return credstore.NewFileStore(filepath.Join(t.TempDir(), "nested", "credentials.json"))
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("load empty", func(t *testing.T) {
				s := newStore(t)
				_, err := s.Load()
				require.Error(t, err)
				require.True(t, errors.Is(err, errors.ErrNotFound))
			})

			t.Run("save then load", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Save(testToken()))

				tok, err := s.Load()
				require.NoError(t, err)
				require.Equal(t, "access-1", tok.AccessToken)
				require.Equal(t, "refresh-1", tok.RefreshToken)
				require.Equal(t, "bearer", tok.TokenType)
				require.True(t, tok.Expiry.Equal(testToken().Expiry))
			})

			t.Run("save replaces pair", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Save(testToken()))
				require.NoError(t, s.Save(&oauth2.Token{AccessToken: "access-2", RefreshToken: "refresh-2"}))

				tok, err := s.Load()
				require.NoError(t, err)
				require.Equal(t, "access-2", tok.AccessToken)
				require.Equal(t, "refresh-2", tok.RefreshToken)
				require.True(t, tok.Expiry.IsZero())
			})

			t.Run("save rejects empty access token", func(t *testing.T) {
				s := newStore(t)
				err := s.Save(&oauth2.Token{RefreshToken: "refresh-only"})
				require.Error(t, err)
				require.True(t, errors.Is(err, errors.ErrInvalidToken))
			})

			t.Run("delete", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Delete())
				require.NoError(t, s.Save(testToken()))
				require.NoError(t, s.Delete())

				_, err := s.Load()
				require.True(t, errors.Is(err, errors.ErrNotFound))
			})
		})
	}
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := credstore.NewFileStore(path)
	require.NoError(t, s.Save(testToken()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := credstore.NewFileStore(path).Load()
	require.Error(t, err)

	var storeErr *credstore.StoreError
	require.True(t, errors.As(err, &storeErr))
	require.Equal(t, "load", storeErr.Operation)
}

func TestMemoryStore_Keys(t *testing.T) {
	s := credstore.NewMemoryStore()
	require.NoError(t, s.Save(testToken()))

	access, ok := s.Get(credstore.AccessTokenKey)
	require.True(t, ok)
	require.Equal(t, "access-1", access)

	refresh, ok := s.Get(credstore.RefreshTokenKey)
	require.True(t, ok)
	require.Equal(t, "refresh-1", refresh)
}
