package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/models"
	"github.com/jrsteele09/go-admin-client/users"
	"github.com/rs/zerolog/log"
)

const DefaultSuperAdminName = "System Administrator"

// InitialiseSystem seeds the super admin, the location catalogue and a few bug reports.
func (s *Server) InitialiseSystem(config config.Config) error {
	adminEmail := config.GetAdminID()
	generatedPassword, err := s.createSuperAdmin(adminEmail, config.GetAdminPassword())
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap super admin: %w", err)
	}

	s.seedLocations()
	s.seedBugReports()

	if generatedPassword != "" {
		log.Info().
			Str("email", adminEmail).
			Str("password", generatedPassword).
			Msg("Super admin created with a generated password")
	}
	return nil
}

// CreateUser stores a copy of user with the given password, replacing any user with the same email.
func (s *Server) CreateUser(user users.User, password string) (*users.User, error) {
	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[server CreateUser] failed to hash password: %w", err)
	}

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.PasswordHash = passwordHash
	user.DateJoined = s.now()
	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil {
		user.ID = existing.ID
	}

	if err := s.userRepo.Upsert(&user); err != nil {
		return nil, fmt.Errorf("[server CreateUser] failed to store user: %w", err)
	}
	return &user, nil
}

// createSuperAdmin creates the super admin user if none exists.
// Returns the generated password when one had to be made up.
func (s *Server) createSuperAdmin(adminUserEmail, defaultPassword string) (generatedPassword string, err error) {
	existingUser, err := s.userRepo.GetByEmail(adminUserEmail)
	if err == nil && existingUser != nil && existingUser.IsSuperAdmin() {
		return "", nil
	}

	password := defaultPassword
	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("[server createSuperAdmin] failed to generate password: %w", err)
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	}

	_, err = s.CreateUser(users.User{
		Email: adminUserEmail,
		Name:  DefaultSuperAdminName,
		Roles: []users.RoleType{users.RoleSuperAdmin},
	}, password)
	if err != nil {
		return "", fmt.Errorf("[server createSuperAdmin] %w", err)
	}
	return generatedPassword, nil
}

func (s *Server) seedLocations() {
	s.data.lock.Lock()
	defer s.data.lock.Unlock()

	s.data.locations = []models.Location{
		{ID: "loc-lon", Name: "London", City: "London", Country: "GB"},
		{ID: "loc-man", Name: "Manchester", City: "Manchester", Country: "GB"},
		{ID: "loc-edi", Name: "Edinburgh", City: "Edinburgh", Country: "GB"},
		{ID: "loc-dub", Name: "Dublin", City: "Dublin", Country: "IE"},
		{ID: "loc-par", Name: "Paris", City: "Paris", Country: "FR"},
		{ID: "loc-lyo", Name: "Lyon", City: "Lyon", Country: "FR"},
	}
}

func (s *Server) seedBugReports() {
	s.data.addBugReport(models.BugReport{
		Title:       "Checkout button unresponsive on iOS",
		Description: "Tapping checkout twice places the order twice",
		Reporter:    "support@example.com",
	})
	s.data.addBugReport(models.BugReport{
		Title:    "Menu images fail to load",
		Reporter: "owner@example.com",
		Status:   models.BugStatusInProgress,
	})
}

// signingSecret returns the configured secret, or a random one for this process
func signingSecret(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return hex.EncodeToString(secret), nil
}
