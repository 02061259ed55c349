package auth

import (
	"time"

	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"github.com/jrsteele09/go-admin-client/token"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/pkg/errors"
)

// Service authenticates admin users and exchanges refresh tokens for the mock API.
type Service struct {
	users        users.UserRepo   // Repository for user data
	tokenCreator *token.Manager   // Create and handle token generation
	validator    *Validator       // Request checks
	nowTime      func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(userRepo users.UserRepo, tokenCreator *token.Manager, options ...ServiceOption) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if tokenCreator == nil {
		return nil, errors.New("[NewService] tokenCreator is required")
	}

	s := &Service{
		users:        userRepo,
		tokenCreator: tokenCreator,
		validator:    NewValidator(),
		nowTime:      time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Login verifies the user's password and issues a new credential pair.
// Unknown users and wrong passwords both return apperrors.ErrInvalidCredentials.
func (s *Service) Login(req oauthmodel.LoginRequest) (*oauthmodel.TokenResponse, error) {
	if err := s.validator.ValidateLoginRequest(req); err != nil {
		return nil, errors.Wrap(apperrors.ErrInvalidRequest, err.Error())
	}

	user, err := s.users.GetByEmail(req.ID)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrInvalidCredentials, UserNotFoundErr.Error())
	}
	if err := s.validator.ValidateUserState(user); err != nil {
		return nil, errors.Wrap(apperrors.ErrUserBlocked, err.Error())
	}
	if !user.CheckPassword(req.Password) {
		return nil, errors.Wrap(apperrors.ErrInvalidCredentials, UserPasswordsDontMatchErr.Error())
	}

	updated := *user
	updated.LastLogin = s.nowTime()
	if err := s.users.Upsert(&updated); err != nil {
		return nil, errors.Wrap(err, "[Login] Upsert")
	}

	return s.tokenCreator.GenerateTokenResponse(&updated)
}

// Refresh exchanges a refresh token for a rotated credential pair.
func (s *Service) Refresh(req oauthmodel.RefreshRequest) (*oauthmodel.TokenResponse, error) {
	if err := s.validator.ValidateRefreshRequest(req); err != nil {
		return nil, errors.Wrap(apperrors.ErrInvalidRefreshToken, err.Error())
	}
	return s.tokenCreator.Refresh(req.RefreshToken)
}

// Authenticate validates a bearer access token and returns the user it was issued to.
func (s *Service) Authenticate(accessToken string) (*users.User, *token.AccessClaims, error) {
	if err := s.validator.ValidateAccessToken(accessToken); err != nil {
		return nil, nil, errors.Wrap(apperrors.ErrInvalidToken, err.Error())
	}

	claims, err := s.tokenCreator.Validate(accessToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByID(claims.Subject)
	if err != nil {
		return nil, nil, errors.Wrap(apperrors.ErrInvalidToken, UserNotFoundErr.Error())
	}
	if err := s.validator.ValidateUserState(user); err != nil {
		return nil, nil, errors.Wrap(apperrors.ErrInvalidToken, err.Error())
	}
	return user, claims, nil
}

// Logout revokes the presented access token and refresh token. Either may be empty.
func (s *Service) Logout(accessToken, refreshToken string) {
	if accessToken != "" {
		_ = s.tokenCreator.RevokeAccessToken(accessToken)
	}
	if refreshToken != "" {
		s.tokenCreator.InvalidateRefreshToken(refreshToken)
	}
}
