package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// EphemeralStore is an in-memory TTL key-value store implementing
// ports.EphemeralStore. Expiry is lazy: a key past its deadline is treated
// as absent and removed on the next access.
type EphemeralStore struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	entries map[string]ephemeralEntry
}

type ephemeralEntry struct {
	value     string
	expiresAt time.Time
}

func NewEphemeralStore(clock clockwork.Clock) *EphemeralStore {
	return &EphemeralStore{
		clock:   clock,
		entries: make(map[string]ephemeralEntry),
	}
}

func (s *EphemeralStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = ephemeralEntry{
		value:     value,
		expiresAt: s.clock.Now().Add(ttl),
	}
	return nil
}

func (s *EphemeralStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(key), nil
}

// TakeAndDelete atomically checks for the key and removes it. The mutex
// makes the check-and-delete a single step, so exactly one concurrent
// caller observes true.
func (s *EphemeralStore) TakeAndDelete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live(key) {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

// live must be called with the lock held.
func (s *EphemeralStore) live(key string) bool {
	entry, exists := s.entries[key]
	if !exists {
		return false
	}
	if !s.clock.Now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return false
	}
	return true
}
