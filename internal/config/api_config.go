package config

import (
	"strings"
	"time"
)

const (
	baseURLVar            = "API_BASE_URL"
	loginPathVar          = "LOGIN_PATH"
	refreshPathVar        = "REFRESH_PATH"
	logoutPathVar         = "LOGOUT_PATH"
	refreshExemptPathsVar = "REFRESH_EXEMPT_PATHS"
	requestTimeoutVar     = "REQUEST_TIMEOUT"
	issuerURLVar          = "ISSUER_URL"
	credentialsFileVar    = "CREDENTIALS_FILE"

	DefaultLoginPath      = "/auth/login"
	DefaultRefreshPath    = "/auth/refresh"
	DefaultLogoutPath     = "/auth/logout"
	DefaultRequestTimeout = 30 * time.Second
)

type API struct {
	src source
}

var _ APIConfig = API{}

// GetBaseURL returns the base URL of the remote API (e.g., "https://api.example.com")
func (a API) GetBaseURL() string {
	return strings.TrimRight(a.src.get(baseURLVar, "http://localhost:8080"), "/")
}

func (a API) GetLoginPath() string {
	return a.src.get(loginPathVar, DefaultLoginPath)
}

func (a API) GetRefreshPath() string {
	return a.src.get(refreshPathVar, DefaultRefreshPath)
}

// GetLogoutPath returns the endpoint that revokes a session server-side
func (a API) GetLogoutPath() string {
	return a.src.get(logoutPathVar, DefaultLogoutPath)
}

// GetRefreshExemptPaths returns extra paths (besides login and refresh) whose 401s must never
// trigger a token refresh, e.g. password reset.
func (a API) GetRefreshExemptPaths() []string {
	raw := a.src.get(refreshExemptPathsVar, "")
	if raw == "" {
		return nil
	}
	var paths []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (a API) GetRequestTimeout() time.Duration {
	return parseDuration(a.src.get(requestTimeoutVar, ""), DefaultRequestTimeout)
}

// GetIssuerURL returns the OIDC issuer used to discover the refresh endpoint. Empty disables discovery.
func (a API) GetIssuerURL() string {
	return a.src.get(issuerURLVar, "")
}

type Storage struct {
	src source
}

var _ StorageConfig = Storage{}

func (s Storage) GetCredentialsFile() string {
	return s.src.get(credentialsFileVar, "./data/credentials.json")
}

func parseDuration(raw string, defaultValue time.Duration) time.Duration {
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
