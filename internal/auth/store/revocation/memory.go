// Package revocation tracks logged-out token ids until their tokens would
// have expired anyway.
package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemory is a process-local revocation list. Suitable for development and
// tests; distributed deployments use the Redis implementation so every
// instance sees the same logouts.
type InMemory struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{revoked: make(map[string]time.Time)}
}

// Revoke marks a token id as revoked for the given lifetime.
func (l *InMemory) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether a token id is on the list. Expired markers are
// pruned lazily.
func (l *InMemory) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	l.mu.RLock()
	until, ok := l.revoked[jti]
	l.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		l.mu.Lock()
		delete(l.revoked, jti)
		l.mu.Unlock()
		return false, nil
	}
	return true, nil
}
