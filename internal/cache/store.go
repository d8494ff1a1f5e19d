package cache

import (
	"sync"
	"time"
)

// Store is a token-bound TTL cache. An entry is only served while its age is
// below the TTL and the identity token it was produced under still matches
// the caller's token; anything else reads as a miss, so a login change or a
// currency-preference change implicitly invalidates every entry.
type Store[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[T]
}

type entry[T any] struct {
	value     T
	fetchedAt time.Time
	token     string
}

// New creates an empty store with the given TTL.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
	}
}

// Get returns the entry under key if it is fresh for the given token.
func (s *Store[T]) Get(key, token string, now time.Time) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if e.token != token || now.Sub(e.fetchedAt) >= s.ttl {
		return zero, false
	}
	return e.value, true
}

// Set stores a value produced at now under the given identity token.
func (s *Store[T]) Set(key string, value T, token string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[T]{value: value, fetchedAt: now, token: token}
}

// Delete removes a single key.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear removes every entry.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry[T])
}

// Size returns the current number of entries, fresh or not.
func (s *Store[T]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CleanExpired drops age-expired entries and returns how many were removed.
// Token-stale entries are kept; only a read with the current token can tell
// those apart.
func (s *Store[T]) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range s.entries {
		if now.Sub(e.fetchedAt) >= s.ttl {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
