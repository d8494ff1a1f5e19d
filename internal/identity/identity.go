// Package identity exposes the caller's authentication token and currency
// preference to the analytics engine. The engine only ever compares these
// values when deciding cache freshness; it never interprets the token.
package identity

import "sync"

// Provider is synchronously readable at any time.
type Provider interface {
	// Token returns the current auth token, or "" when unauthenticated.
	Token() string
	// PreferredCurrency returns the user's preferred currency code.
	PreferredCurrency() string
}

// Static is a Provider with swappable values, safe for concurrent use. The
// server feeds it from configuration; a logout/login or a settings change
// updates it in place, which makes every cache entry bound to the old values
// read as stale.
type Static struct {
	mu       sync.RWMutex
	token    string
	currency string
}

// NewStatic creates a provider with the given initial values.
func NewStatic(token, currency string) *Static {
	return &Static{token: token, currency: currency}
}

func (s *Static) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Static) PreferredCurrency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// SetToken replaces the auth token.
func (s *Static) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SetPreferredCurrency replaces the currency preference.
func (s *Static) SetPreferredCurrency(currency string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currency = currency
}
