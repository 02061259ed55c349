package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, config.DefaultLoginPath, c.GetLoginPath())
	require.Equal(t, config.DefaultRefreshPath, c.GetRefreshPath())
	require.Equal(t, config.DefaultLogoutPath, c.GetLogoutPath())
	require.Equal(t, config.DefaultRequestTimeout, c.GetRequestTimeout())
	require.Empty(t, c.GetRefreshExemptPaths())
	require.Equal(t, ":8080", c.GetPort())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", c.GetBaseURL())
}

func TestLoad_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
api_base_url: https://api.example.com/
request_timeout: 5s
refresh_exempt_paths:
  - /auth/password-reset
  - /auth/otp
port: "9090"
`), 0o600)
	require.NoError(t, err)

	c, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://api.example.com", c.GetBaseURL())
	require.Equal(t, 5*time.Second, c.GetRequestTimeout())
	require.Equal(t, []string{"/auth/password-reset", "/auth/otp"}, c.GetRefreshExemptPaths())
	require.Equal(t, ":9090", c.GetPort())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("login_path: /file/login\n"), 0o600))
	t.Setenv("LOGIN_PATH", "/env/login")
	t.Setenv("LOGOUT_PATH", "/env/logout")

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/env/login", c.GetLoginPath())
	require.Equal(t, "/env/logout", c.GetLogoutPath())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key: [unclosed"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	c, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.DefaultRequestTimeout, c.GetRequestTimeout())
}
