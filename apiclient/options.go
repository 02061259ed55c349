package apiclient

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-admin-client/credstore"
	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is the per-call timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the fixed timeout applied to every HTTP call, including refreshes.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithStore sets the durable credential store read at construction and written on login and refresh.
func WithStore(store credstore.Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLoginPath sets the login endpoint, relative to the base URL or absolute.
func WithLoginPath(path string) Option {
	return func(c *Client) {
		c.loginPath = path
	}
}

// WithRefreshPath sets the refresh endpoint, relative to the base URL or absolute.
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		c.refreshPath = path
	}
}

// WithLogoutPath sets the endpoint SignOut posts to, relative to the base URL or absolute.
func WithLogoutPath(path string) Option {
	return func(c *Client) {
		c.logoutPath = path
	}
}

// WithEndpoints applies discovered endpoints. Empty fields are ignored.
func WithEndpoints(endpoints Endpoints) Option {
	return func(c *Client) {
		if endpoints.LoginURL != "" {
			c.loginPath = endpoints.LoginURL
		}
		if endpoints.RefreshURL != "" {
			c.refreshPath = endpoints.RefreshURL
		}
	}
}

// WithExemptPaths adds paths whose 401 responses never trigger a refresh, on top of the login and
// refresh endpoints. Ignored when WithRefreshExempt is used.
func WithExemptPaths(paths ...string) Option {
	return func(c *Client) {
		c.exemptPaths = append(c.exemptPaths, paths...)
	}
}

// WithRefreshExempt replaces the default exemption predicate entirely.
func WithRefreshExempt(isExempt func(*http.Request) bool) Option {
	return func(c *Client) {
		c.isExempt = isExempt
	}
}

// WithSessionEndHandler registers the callback run when the session is ended, either by Logout
// (with a nil error) or by a refresh the server rejected. Typically it routes the user to login.
func WithSessionEndHandler(handler func(reason error)) Option {
	return func(c *Client) {
		c.onSessionEnd = handler
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = now
	}
}
