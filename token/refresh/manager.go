package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jrsteele09/go-admin-client/internal/errors"
)

const defaultTokenLength = 32 // 32 bytes = 256 bits

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo    Repo
	expiry  time.Duration
	nowFunc func() time.Time
}

type ManagerOption func(*Manager)

// WithNowFunc overrides the clock, primarily for tests
func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, expiry time.Duration, options ...ManagerOption) *Manager {
	m := &Manager{
		repo:    repo,
		expiry:  expiry,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Create generates a new refresh token and stores it. Each user holds a single refresh token,
// so creating one invalidates the previous.
func (m *Manager) Create(userID string) (string, error) {
	if existingToken, err := m.repo.GetByUserID(userID); err == nil && existingToken != nil {
		if err := m.repo.Delete(existingToken.Token); err != nil {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, defaultTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    m.nowFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokenStr, nil
}

// Validate returns the stored token if it exists and has not expired. Expired tokens are deleted.
func (m *Manager) Validate(token string) (*StoredRefreshToken, error) {
	rt, err := m.repo.Get(token)
	if err != nil {
		return nil, errors.ErrInvalidRefreshToken
	}
	if m.IsExpired(rt) {
		_ = m.repo.Delete(token)
		return nil, errors.ErrRefreshTokenExpired
	}
	return rt, nil
}

// Delete removes a refresh token from storage
func (m *Manager) Delete(token string) error {
	return m.repo.Delete(token)
}

// DeleteAll removes every stored refresh token and returns how many were removed
func (m *Manager) DeleteAll() (int, error) {
	tokens, err := m.repo.List(0, 0)
	if err != nil {
		return 0, err
	}
	for _, rt := range tokens {
		if err := m.repo.Delete(rt.Token); err != nil {
			return 0, err
		}
	}
	return len(tokens), nil
}

// IsExpired checks if a refresh token has outlived the configured expiry
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return m.nowFunc().Sub(rt.Iat) > m.expiry
}
