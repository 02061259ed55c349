// Package models holds the resource shapes exchanged with the restaurant admin API.
package models

import (
	"fmt"
	"strings"
	"time"
)

type Restaurant struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Coupon struct {
	ID           string    `json:"id,omitempty"`
	Code         string    `json:"code"`
	Percent      int       `json:"percent"`
	RestaurantID string    `json:"restaurant_id,omitempty"` // empty applies to every restaurant
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

type BugStatus string

const (
	BugStatusOpen       BugStatus = "open"
	BugStatusInProgress BugStatus = "in_progress"
	BugStatusResolved   BugStatus = "resolved"
	BugStatusRejected   BugStatus = "rejected"
)

func (s BugStatus) Valid() bool {
	switch s {
	case BugStatusOpen, BugStatusInProgress, BugStatusResolved, BugStatusRejected:
		return true
	}
	return false
}

type BugReport struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Reporter    string    `json:"reporter,omitempty"`
	Status      BugStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type Banner struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Location struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// CredentialShare is the result of sharing a restaurant's dashboard login with an email address.
type CredentialShare struct {
	RestaurantID      string    `json:"restaurant_id"`
	Email             string    `json:"email"`
	TemporaryPassword string    `json:"temporary_password,omitempty"`
	SharedAt          time.Time `json:"shared_at"`
}

// Validate checks the fields a restaurant must have before it is created or updated.
func (r Restaurant) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("restaurant name is required")
	}
	if r.Email != "" && !strings.Contains(r.Email, "@") {
		return fmt.Errorf("invalid restaurant email %q", r.Email)
	}
	return nil
}

// Validate checks a new coupon: a code, a percentage between 1 and 100 and an expiry after now.
func (c Coupon) Validate(now time.Time) error {
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("coupon code is required")
	}
	if c.Percent < 1 || c.Percent > 100 {
		return fmt.Errorf("coupon percent must be between 1 and 100, got %d", c.Percent)
	}
	if !c.ExpiresAt.After(now) {
		return fmt.Errorf("coupon expiry must be in the future")
	}
	return nil
}
