package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/jrsteele09/go-admin-client/token/refresh"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/pkg/errors"
)

const tokenTypeBearer = "Bearer"

// AccessClaims are the claims carried by an issued access token
type AccessClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	signer             Signer           // Token signing and verification
	issuer             string           // iss claim
	refreshManager     *refresh.Manager // Created once options are applied
	userRepo           users.UserRepo   // Repository for user data
	denylist           Denylist         // Access tokens revoked before expiry
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry time.Duration, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithDenylist(denylist Denylist) ManagerOption {
	return func(m *Manager) {
		m.denylist = denylist
	}
}

func New(repo refresh.Repo, userRepo users.UserRepo, signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		userRepo: userRepo,
		signer:   signer,
		denylist: NewMemoryDenylist(),
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry == 0 {
		m.accessTokenExpiry = 15 * time.Minute
	}
	if m.refreshTokenExpiry == 0 {
		m.refreshTokenExpiry = 7 * 24 * time.Hour
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}

	// The refresh manager reads the clock through the issuer so tests can move both together.
	m.refreshManager = refresh.NewManager(repo, m.refreshTokenExpiry, refresh.WithNowFunc(func() time.Time { return m.nowFunc() }))
	return m
}

// AccessTokenExpiry is the lifetime of issued access tokens
func (c *Manager) AccessTokenExpiry() time.Duration {
	return c.accessTokenExpiry
}

func (c *Manager) CreateAccessToken(user *users.User) (*string, error) {
	now := c.nowFunc()
	claims := AccessClaims{
		Roles: user.RoleStrings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTokenExpiry)),
			ID:        uuid.New().String(),
		},
	}

	signedToken, err := c.signer.Sign(claims)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.CreateAccessToken Sign")
	}
	return &signedToken, nil
}

func (c *Manager) CreateRefreshToken(userID string) (*string, error) {
	tokenStr, err := c.refreshManager.Create(userID)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.CreateRefreshToken")
	}
	return &tokenStr, nil
}

// GenerateTokenResponse issues a fresh access token and a new refresh token for user,
// replacing any refresh token the user already held.
func (c *Manager) GenerateTokenResponse(user *users.User) (*oauthmodel.TokenResponse, error) {
	accessToken, err := c.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.GenerateTokenResponse CreateAccessToken")
	}
	refreshToken, err := c.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.GenerateTokenResponse CreateRefreshToken")
	}

	return &oauthmodel.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int(c.accessTokenExpiry.Seconds()),
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a stored refresh token for a new pair. The presented token is rotated out.
func (c *Manager) Refresh(refreshToken string) (*oauthmodel.TokenResponse, error) {
	rt, err := c.refreshManager.Validate(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := c.userRepo.GetByID(rt.UserID)
	if err != nil {
		_ = c.refreshManager.Delete(refreshToken)
		return nil, errors.Wrap(apperrors.ErrInvalidRefreshToken, "user not found for refresh token")
	}
	if user.Blocked {
		_ = c.refreshManager.Delete(refreshToken)
		return nil, apperrors.ErrUserBlocked
	}

	return c.GenerateTokenResponse(user)
}

// Validate verifies an access token's signature, issuer, expiry and revocation status.
func (c *Manager) Validate(rawToken string) (*AccessClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrInvalidToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(c.nowFunc),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}

	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(rawToken, claims, c.signer.GetVerificationKey, parserOpts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperrors.ErrTokenExpired
	case err != nil || !tok.Valid:
		return nil, apperrors.ErrInvalidToken
	}

	if claims.ID != "" && c.denylist.Contains(claims.ID) {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// RevokeAccessToken rejects a still-valid access token until it would have expired anyway
func (c *Manager) RevokeAccessToken(rawToken string) error {
	claims, err := c.Validate(rawToken)
	if err != nil {
		return err
	}
	c.denylist.Prune(c.nowFunc())
	return c.denylist.Revoke(claims.ID, claims.ExpiresAt.Time)
}

func (c *Manager) InvalidateRefreshToken(refreshToken string) {
	_ = c.refreshManager.Delete(refreshToken)
}

// RevokeRefreshTokens drops every outstanding refresh token and returns how many were dropped
func (c *Manager) RevokeRefreshTokens() (int, error) {
	return c.refreshManager.DeleteAll()
}
