package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/duogate/internal/domain/auth"
	"github.com/target/duogate/internal/ports"
)

// DefaultSessionTTL bounds sessions created without an explicit lifetime.
const DefaultSessionTTL = 8 * time.Hour

// ErrSessionExpired is returned by GetSession for sessions past their expiry.
var ErrSessionExpired = errors.New("session expired")

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Sessions ports.SessionStore // Required
	Now      func() time.Time   // Optional
}

// SessionService manages the first-factor sessions the two-factor endpoints run under.
type SessionService struct {
	sessions ports.SessionStore
	now      func() time.Time
}

// NewSessionService constructs a new SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	if opts.Sessions == nil {
		panic("SessionStore is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionService{sessions: opts.Sessions, now: now}
}

// CreateSessionInput groups parameters for CreateSession.
type CreateSessionInput struct {
	UserID string
	Email  string
	TTL    time.Duration
}

// CreateSession persists a new session that has not yet passed the second factor.
func (s *SessionService) CreateSession(ctx context.Context, in CreateSessionInput) (*domainauth.Session, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, errors.New("user ID is required")
	}
	ttl := in.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	sess := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Email:     in.Email,
		ExpiresAt: s.now().Add(ttl).UTC(),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &sess, nil
}

// GetSession retrieves a session by ID, deleting it if it has expired.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if sess.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &sess, nil
}

// MarkTwoFactorVerified records that the session passed the second factor.
func (s *SessionService) MarkTwoFactorVerified(ctx context.Context, sessionID string) error {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.TwoFactorVerified {
		return nil
	}
	sess.TwoFactorVerified = true
	if err := s.sessions.Save(ctx, *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout removes a session.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
