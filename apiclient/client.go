// Package apiclient is the authenticated client for the restaurant admin REST API.
//
// Every call carries the current access token. When calls fail with 401 because the access token
// expired, the client performs a single refresh, however many calls failed at once, and replays
// each of them with the new token.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-client/credstore"
	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*Client)(nil)

// Client is safe for concurrent use. Hold one per authenticated session.
type Client struct {
	baseURL      *url.URL
	loginPath    string
	refreshPath  string
	logoutPath   string
	exemptPaths  []string
	timeout      time.Duration
	httpClient   *http.Client
	store        credstore.Store
	logger       zerolog.Logger
	isExempt     func(*http.Request) bool
	onSessionEnd func(reason error)
	nowFunc      func() time.Time

	loginURL   *url.URL
	refreshURL *url.URL

	mu           sync.Mutex
	token        *oauth2.Token
	epoch        uint64 // bumped by Login and Logout
	sessionEnded bool
	refreshing   bool
	pending      []chan refreshOutcome
}

// New creates a client for the API at baseURL and resumes any session held in the credential store.
func New(baseURL string, options ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient.New: invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:     base,
		loginPath:   config.DefaultLoginPath,
		refreshPath: config.DefaultRefreshPath,
		logoutPath:  config.DefaultLogoutPath,
		timeout:     config.DefaultRequestTimeout,
		logger:      log.With().Str("component", "apiclient").Logger(),
	}
	for _, opt := range options {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.store == nil {
		c.store = credstore.NewMemoryStore()
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}

	if c.loginURL, err = c.resolve(c.loginPath); err != nil {
		return nil, fmt.Errorf("apiclient.New login path: %w", err)
	}
	if c.refreshURL, err = c.resolve(c.refreshPath); err != nil {
		return nil, fmt.Errorf("apiclient.New refresh path: %w", err)
	}
	if c.isExempt == nil {
		if c.isExempt, err = c.defaultExempt(); err != nil {
			return nil, fmt.Errorf("apiclient.New exempt paths: %w", err)
		}
	}

	c.resumeSession()
	return c, nil
}

// NewFromConfig creates a client from configuration. When an issuer URL is configured the refresh
// endpoint is discovered from its OpenID configuration.
func NewFromConfig(ctx context.Context, cfg config.APIConfig, store credstore.Store, options ...Option) (*Client, error) {
	opts := []Option{
		WithStore(store),
		WithTimeout(cfg.GetRequestTimeout()),
		WithLoginPath(cfg.GetLoginPath()),
		WithRefreshPath(cfg.GetRefreshPath()),
		WithLogoutPath(cfg.GetLogoutPath()),
		WithExemptPaths(cfg.GetRefreshExemptPaths()...),
	}

	if issuer := cfg.GetIssuerURL(); issuer != "" {
		endpoints, err := DiscoverEndpoints(ctx, issuer, &http.Client{Timeout: cfg.GetRequestTimeout()})
		if err != nil {
			return nil, fmt.Errorf("apiclient.NewFromConfig: %w", err)
		}
		opts = append(opts, WithEndpoints(endpoints))
	}

	return New(cfg.GetBaseURL(), append(opts, options...)...)
}

func (c *Client) resumeSession() {
	tok, err := c.store.Load()
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			c.logger.Warn().Err(err).Msg("Failed to load stored credentials")
		}
		return
	}
	c.token = tok
	c.logger.Debug().Msg("Resumed stored session")
}

// Login exchanges an account id and secret for a credential pair and makes it current.
func (c *Client) Login(ctx context.Context, id, secret string) (*oauth2.Token, error) {
	tok, err := c.exchange(ctx, "login", c.loginURL, oauthmodel.LoginRequest{ID: id, Password: secret}, "")
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.token = tok
	c.epoch++
	c.sessionEnded = false
	c.persistLocked(tok)
	c.mu.Unlock()

	c.logger.Info().Str("id", id).Msg("Logged in")
	return copyToken(tok), nil
}

// Logout clears the stored credentials and ends the session. Requests fail with ErrSessionEnded
// until the next Login.
func (c *Client) Logout() {
	c.mu.Lock()
	c.token = nil
	c.epoch++
	c.sessionEnded = true
	c.clearLocked()
	c.mu.Unlock()

	c.logger.Info().Msg("Logged out")
	if c.onSessionEnd != nil {
		c.onSessionEnd(nil)
	}
}

// SignOut asks the API to revoke the session, then ends it locally whatever the outcome.
// The refresh token sent is the one current when the call goes out, so a refresh triggered by
// the call itself does not leave the rotated token live on the server.
func (c *Client) SignOut(ctx context.Context) error {
	defer c.Logout()

	c.mu.Lock()
	held := c.token != nil && !c.sessionEnded
	c.mu.Unlock()
	if !held {
		return nil
	}

	_, err := c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   c.logoutPath,
		tokenBody: func(tok *oauth2.Token) any {
			return oauthmodel.RefreshRequest{RefreshToken: tok.RefreshToken}
		},
	})
	return err
}

// Token returns a copy of the current credential pair.
func (c *Client) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return nil, ErrNotAuthenticated
	}
	return copyToken(c.token), nil
}

func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != nil && c.token.AccessToken != ""
}

// Request issues method path with an optional JSON body.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	req := &Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(req)
	}
	return c.Do(ctx, req)
}

// Do issues req with the current access token. A 401 triggers the shared refresh and a single replay.
// Non-2xx responses are returned as *APIError, transport failures as *NetworkError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	c.mu.Lock()
	ended, tok := c.sessionEnded, c.token
	c.mu.Unlock()
	if ended {
		return nil, &AuthError{Op: "request", Err: ErrSessionEnded}
	}

	req = req.clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return c.do(ctx, req, tok)
}

func (c *Client) do(ctx context.Context, req *Request, tok *oauth2.Token) (*Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, req, tok)
	if err != nil {
		return nil, err
	}
	logger := c.logger.With().
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Str("method", httpReq.Method).
		Str("path", httpReq.URL.Path).
		Bool("retried", req.Retried).
		Logger()

	status, header, body, err := c.send(httpReq)
	if err != nil {
		logger.Debug().Err(err).Msg("Request failed")
		return nil, err
	}
	logger.Debug().Int("status", status).Msg("Request complete")

	if status != http.StatusUnauthorized {
		return checkStatus(httpReq, status, header, body)
	}

	switch {
	case !c.trusted(httpReq.URL):
		return checkStatus(httpReq, status, header, body)
	case c.isExempt(httpReq):
		return nil, &AuthError{Op: "request", StatusCode: status, Message: errorMessage(status, body), Err: ErrUnauthorized}
	case req.Retried:
		logger.Warn().Msg("Request rejected again after token refresh")
		return nil, &AuthError{Op: "request", StatusCode: status, Message: errorMessage(status, body), Err: ErrUnauthorized}
	case tok == nil:
		return nil, &AuthError{Op: "request", StatusCode: status, Message: errorMessage(status, body), Err: ErrNotAuthenticated}
	}

	refreshed, err := c.awaitRefresh(ctx, tok, logger)
	if err != nil {
		return nil, err
	}

	replay := req.clone()
	replay.Retried = true
	return c.do(ctx, replay, refreshed)
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request, tok *oauth2.Token) (*http.Request, error) {
	target, err := c.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	if len(req.Query) > 0 {
		q := target.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	body, contentType, err := req.encodeBody(tok)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	for k, vs := range req.Header {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	// Absolute URLs may point anywhere; only the API's own origins see the bearer token.
	if tok != nil && tok.AccessToken != "" && c.trusted(httpReq.URL) {
		tok.SetAuthHeader(httpReq)
	}
	return httpReq, nil
}

// send performs one HTTP round trip and reads the whole body.
func (c *Client) send(httpReq *http.Request) (int, http.Header, []byte, error) {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, nil, &NetworkError{Op: httpReq.Method + " " + httpReq.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, &NetworkError{Op: "read " + httpReq.URL.Path, Err: err}
	}
	return resp.StatusCode, resp.Header, body, nil
}

func checkStatus(httpReq *http.Request, status int, header http.Header, body []byte) (*Response, error) {
	if status < 200 || status > 299 {
		return nil, &APIError{
			Method:     httpReq.Method,
			Path:       httpReq.URL.Path,
			StatusCode: status,
			Message:    errorMessage(status, body),
			Body:       body,
		}
	}
	return &Response{StatusCode: status, Header: header, Body: body}, nil
}

// resolve turns a path relative to the base URL (optionally with a query) or an absolute URL into a URL.
func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("apiclient: invalid path %q: %w", path, err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawPath = ""
	u.RawQuery = ref.RawQuery
	return &u, nil
}

// trusted reports whether u belongs to the API base URL or the login and refresh endpoints' origin.
func (c *Client) trusted(u *url.URL) bool {
	for _, known := range []*url.URL{c.baseURL, c.loginURL, c.refreshURL} {
		if known != nil && sameOrigin(known, u) {
			return true
		}
	}
	return false
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}

func endpointKey(u *url.URL) string {
	return strings.ToLower(u.Scheme+"://"+u.Host) + u.Path
}

// defaultExempt exempts the login and refresh endpoints plus any configured extra paths.
// Matching includes the origin, so a same-named path on another host is not exempt.
func (c *Client) defaultExempt() (func(*http.Request) bool, error) {
	exempt := map[string]struct{}{
		endpointKey(c.loginURL):   {},
		endpointKey(c.refreshURL): {},
	}
	for _, p := range c.exemptPaths {
		u, err := c.resolve(p)
		if err != nil {
			return nil, err
		}
		exempt[endpointKey(u)] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := exempt[endpointKey(r.URL)]
		return ok
	}, nil
}

// persistLocked mirrors tok to durable storage. The caller holds c.mu.
func (c *Client) persistLocked(tok *oauth2.Token) {
	if err := c.store.Save(tok); err != nil {
		c.logger.Error().Err(err).Msg("Failed to persist credentials")
	}
}

// clearLocked removes credentials from durable storage. The caller holds c.mu.
func (c *Client) clearLocked() {
	if err := c.store.Delete(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to delete stored credentials")
	}
}

func copyToken(tok *oauth2.Token) *oauth2.Token {
	if tok == nil {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}
