package users

import (
	"fmt"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents an admin dashboard role
type RoleType string

const (
	RoleSuperAdmin      RoleType = "super_admin"      // Can manage every restaurant, coupon and report
	RoleRestaurantOwner RoleType = "restaurant_owner" // Receives shared credentials for one restaurant
)

type User struct {
	ID           string     `json:"id,omitempty"`           // Unique identifier for the user
	Email        string     `json:"email,omitempty"`        // Login id
	PasswordHash string     `json:"-"`                      // Hashed version of the user's password - never serialize
	Name         string     `json:"name,omitempty"`         // Display name
	Roles        []RoleType `json:"roles,omitempty"`        // Dashboard roles
	RestaurantID string     `json:"restaurant_id,omitempty"` // Set for restaurant owners
	DateJoined   time.Time  `json:"date_joined,omitempty"`  // Date and time when the user was created
	LastLogin    time.Time  `json:"last_login,omitempty"`   // Last time the user logged in
	Blocked      bool       `json:"blocked,omitempty"`      // Blocked, has the user been blocked from logging in
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword reports whether password matches the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

// HasRole reports whether the user holds role
func (u *User) HasRole(role RoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsSuperAdmin returns true if the user has super admin privileges
func (u *User) IsSuperAdmin() bool {
	return u.HasRole(RoleSuperAdmin)
}

// RoleStrings returns the roles as plain strings for token claims
func (u *User) RoleStrings() []string {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return roles
}
