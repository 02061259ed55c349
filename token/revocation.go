package token

import (
	"sync"
	"time"
)

// Denylist records access tokens revoked before their expiry, keyed by jti.
// Entries are only needed until the token would have expired anyway.
type Denylist interface {
	Revoke(jti string, expiresAt time.Time) error
	Contains(jti string) bool
	Prune(now time.Time) int
}

type memoryDenylist struct {
	entries map[string]time.Time
	lock    sync.RWMutex
}

func NewMemoryDenylist() Denylist {
	return &memoryDenylist{entries: make(map[string]time.Time)}
}

func (d *memoryDenylist) Revoke(jti string, expiresAt time.Time) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.entries[jti] = expiresAt
	return nil
}

func (d *memoryDenylist) Contains(jti string) bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	_, ok := d.entries[jti]
	return ok
}

// Prune drops entries whose token has expired and returns how many were removed
func (d *memoryDenylist) Prune(now time.Time) int {
	d.lock.Lock()
	defer d.lock.Unlock()
	removed := 0
	for jti, expiresAt := range d.entries {
		if now.After(expiresAt) {
			delete(d.entries, jti)
			removed++
		}
	}
	return removed
}
