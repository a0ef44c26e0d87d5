// Package session issues and validates opaque, time-bounded session tokens
// bound to a user context.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

var (
	// ErrExpired is returned exactly once per token: the expired token is
	// evicted before the error is returned.
	ErrExpired = errors.New("session expired")

	// ErrNotFound is returned for unknown or already-evicted tokens.
	ErrNotFound = errors.New("session not found")
)

// Token is an issued session credential.
type Token struct {
	ID        string             `json:"token"`
	User      models.UserContext `json:"-"`
	IssuedAt  time.Time          `json:"issued_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// Manager stores session tokens in memory and enforces expiry.
type Manager struct {
	mu     sync.Mutex
	tokens map[string]*Token
	ttl    time.Duration

	nowFunc func() time.Time // For testing

	// onCountChange reports the live token count after each mutation,
	// feeding the active-sessions gauge.
	onCountChange func(n int)
}

// NewManager creates a session manager issuing tokens with the given ttl.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		tokens:  map[string]*Token{},
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// SetNowFunc sets a custom time source for testing.
func (m *Manager) SetNowFunc(fn func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nowFunc = fn
}

// OnCountChange registers a callback invoked with the token count after
// every issue, eviction, and revocation.
func (m *Manager) OnCountChange(fn func(n int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCountChange = fn
}

// Issue creates a new token bound to the given user context. A ttl of zero
// (or less) uses the manager's default. Renewal is never implicit; callers
// wanting a fresh expiry must Issue again.
func (m *Manager) Issue(user models.UserContext, ttl time.Duration) (*Token, error) {
	if strings.TrimSpace(user.UserID) == "" {
		return nil, errors.New("user id required")
	}

	id, err := newTokenID()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl <= 0 {
		ttl = m.ttl
	}
	now := m.nowFunc()
	token := &Token{
		ID:        id,
		User:      user,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	m.tokens[id] = token
	m.notifyLocked()

	clone := *token
	return &clone, nil
}

// Validate resolves a token id to its user context. An expired token is
// evicted immediately and reported as ErrExpired once; any later call with
// the same id returns ErrNotFound.
func (m *Manager) Validate(id string) (models.UserContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := m.tokens[id]
	if !ok {
		return models.UserContext{}, ErrNotFound
	}
	if !m.nowFunc().Before(token.ExpiresAt) {
		delete(m.tokens, id)
		m.notifyLocked()
		return models.UserContext{}, ErrExpired
	}
	return token.User, nil
}

// Revoke removes a token, e.g. on explicit logout. Revoking an unknown
// token is not an error.
func (m *Manager) Revoke(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[id]; ok {
		delete(m.tokens, id)
		m.notifyLocked()
	}
}

// Sweep evicts tokens that expired without ever being re-validated and
// returns the number removed. Validation-time eviction is the contract;
// the sweep only reclaims memory for abandoned sessions.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	removed := 0
	for id, token := range m.tokens {
		if !now.Before(token.ExpiresAt) {
			delete(m.tokens, id)
			removed++
		}
	}
	if removed > 0 {
		m.notifyLocked()
	}
	return removed
}

// Len returns the number of stored tokens, expired or not.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

func (m *Manager) notifyLocked() {
	if m.onCountChange != nil {
		m.onCountChange(len(m.tokens))
	}
}

// newTokenID returns a 256-bit random identifier in URL-safe base64.
func newTokenID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
