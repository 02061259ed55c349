// Package credstore persists the client's credential pair so a session survives a restart.
package credstore

import (
	"time"

	"golang.org/x/oauth2"
)

// Record keys. The access and refresh tokens are always written together.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	TokenTypeKey    = "token_type"
	ExpiryKey       = "expiry"
)

// Store provides durable storage for the current credential pair.
type Store interface {
	// Load returns the stored pair, or an error wrapping errors.ErrNotFound when none is held.
	Load() (*oauth2.Token, error)

	// Save replaces the stored pair in a single write.
	Save(tok *oauth2.Token) error

	// Delete removes the stored pair. Deleting an empty store is not an error.
	Delete() error
}

// StoreError indicates a credential storage failure.
type StoreError struct {
	Operation string // "load", "save", "delete"
	Location  string
	Err       error
}

func (e *StoreError) Error() string {
	msg := e.Operation + " credentials"
	if e.Location != "" {
		msg += " at " + e.Location
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func toRecord(tok *oauth2.Token) map[string]string {
	record := map[string]string{
		AccessTokenKey:  tok.AccessToken,
		RefreshTokenKey: tok.RefreshToken,
	}
	if tok.TokenType != "" {
		record[TokenTypeKey] = tok.TokenType
	}
	if !tok.Expiry.IsZero() {
		record[ExpiryKey] = tok.Expiry.UTC().Format(time.RFC3339)
	}
	return record
}

func fromRecord(record map[string]string) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  record[AccessTokenKey],
		RefreshToken: record[RefreshTokenKey],
		TokenType:    record[TokenTypeKey],
	}
	if raw, ok := record[ExpiryKey]; ok {
		if expiry, err := time.Parse(time.RFC3339, raw); err == nil {
			tok.Expiry = expiry
		}
	}
	return tok
}
