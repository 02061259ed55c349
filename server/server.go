package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-admin-client/auth"
	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/token"
	"github.com/jrsteele09/go-admin-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-admin-client/token/refresh/repofake"
	"github.com/jrsteele09/go-admin-client/users"
	userrepofake "github.com/jrsteele09/go-admin-client/users/repofake"
	"github.com/rs/zerolog/log"
)

// Server is an in-process rendition of the restaurant admin API. It issues HS256 access tokens
// and rotating refresh tokens, and serves the dashboard's resources from memory.
type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	issuer      string
	nowFunc     func() time.Time
	clockLock   sync.RWMutex
	userRepo    users.UserRepo
	refreshRepo refresh.Repo
	tokens      *token.Manager
	auth        *auth.Service
	data        *dataStore
	counters    counters
}

type Option func(*Server)

// WithNowFunc sets the clock used for token issue and validation
func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		s.nowFunc = now
	}
}

// WithIssuer fixes the issuer URL. Without it the issuer is derived from each request's host.
func WithIssuer(issuer string) Option {
	return func(s *Server) {
		s.issuer = strings.TrimSuffix(issuer, "/")
	}
}

func WithUserRepo(repo users.UserRepo) Option {
	return func(s *Server) {
		s.userRepo = repo
	}
}

func WithRefreshRepo(repo refresh.Repo) Option {
	return func(s *Server) {
		s.refreshRepo = repo
	}
}

func New(config config.Config, options ...Option) (*Server, error) {
	s := &Server{
		mux:     http.NewServeMux(),
		config:  config,
		env:     config.GetEnv(),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.userRepo == nil {
		s.userRepo = userrepofake.NewFakeUserRepo()
	}
	if s.refreshRepo == nil {
		s.refreshRepo = refreshrepofake.NewFakeRefreshTokenRepo()
	}

	secret, err := signingSecret(config.GetSigningSecret())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create signing secret: %w", err)
	}

	// The clock is read through the server so a test can swap it after construction.
	now := s.now
	s.tokens = token.New(s.refreshRepo, s.userRepo, token.NewHMACSigner(secret),
		token.WithIssuer(s.issuer),
		token.WithTokenExpiry(config.GetAccessTokenExpiry(), config.GetRefreshTokenExpiry()),
		token.WithNowFunc(now),
	)
	s.auth, err = auth.NewService(s.userRepo, s.tokens, auth.WithNowTime(now))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}
	s.data = newDataStore(now)

	if err := s.InitialiseSystem(config); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// SetNowFunc replaces the server clock, letting tests expire issued tokens
func (s *Server) SetNowFunc(now func() time.Time) {
	s.clockLock.Lock()
	defer s.clockLock.Unlock()
	s.nowFunc = now
}

func (s *Server) now() time.Time {
	s.clockLock.RLock()
	defer s.clockLock.RUnlock()
	return s.nowFunc()
}

// RevokeRefreshTokens invalidates every outstanding refresh token
func (s *Server) RevokeRefreshTokens() int {
	n, err := s.tokens.RevokeRefreshTokens()
	if err != nil {
		log.Error().Err(err).Msg("failed to revoke refresh tokens")
	}
	return n
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	colour, ok := methodColors[method]
	if !ok {
		colour = Gray
	}
	log.Debug().Msgf("[%s%-7s%s] %s", colour, method, ResetColor, path)
}

// issuerFor returns the configured issuer, or the request's own origin
func (s *Server) issuerFor(r *http.Request) string {
	if s.issuer != "" {
		return s.issuer
	}
	return getScheme(r) + "://" + r.Host
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
