// Package auth provides hand-written fakes for the session and entitlement ports.
package auth

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/target/duogate/internal/domain/auth"
	"github.com/target/duogate/internal/domain/twofactor"
	"github.com/target/duogate/internal/ports"
)

var (
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.PremiumChecker = StaticPremiumChecker{}
)

// MemorySessionStore keeps sessions in a map. It never evicts on its own;
// expiry is left to the caller so tests can drive it with a fake clock.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
	saves    int
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]domainauth.Session{}}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.saves++
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[id]; ok {
		return sess, nil
	}
	return domainauth.Session{}, domainauth.ErrSessionNotFound
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Saves returns how many times Save succeeded.
func (m *MemorySessionStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// StaticPremiumChecker answers premium checks from the user's own Premium flag,
// or from Override when it is set.
type StaticPremiumChecker struct {
	Override *bool
	Err      error
}

func (c StaticPremiumChecker) CanAccessPremium(_ context.Context, user twofactor.User) (bool, error) {
	if c.Err != nil {
		return false, c.Err
	}
	if c.Override != nil {
		return *c.Override, nil
	}
	return user.Premium, nil
}
