// Package redis provides Redis-backed session storage and authorization-code replay tracking.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/duogate/internal/domain/auth"
	"github.com/target/duogate/internal/ports"
)

const defaultSessionPrefix = "duogate:session:"

// Hash fields of a stored session.
const (
	fieldUserID   = "user_id"
	fieldEmail    = "email"
	fieldVerified = "two_factor_verified"
	fieldExpires  = "expires_at"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps each session in a Redis hash that expires with the session.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// SessionStoreOption customizes a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithKeyPrefix overrides the "duogate:session:" key prefix.
func WithKeyPrefix(prefix string) SessionStoreOption {
	return func(s *SessionStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewSessionStore creates a SessionStore on client.
func NewSessionStore(client redis.UniversalClient, opts ...SessionStoreOption) *SessionStore {
	if client == nil {
		panic("redis client is required")
	}
	s := &SessionStore{client: client, prefix: defaultSessionPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) key(id string) string { return s.prefix + id }

// Save replaces the stored session and resets its expiry.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if sess.Remaining(time.Now()) <= 0 {
		return errors.New("session is expired")
	}

	key := s.key(sess.ID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldUserID, sess.UserID,
			fieldEmail, sess.Email,
			fieldVerified, strconv.FormatBool(sess.TwoFactorVerified),
			fieldExpires, sess.ExpiresAt.UTC().Format(time.RFC3339Nano),
		)
		pipe.ExpireAt(ctx, key, sess.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

// Get loads a session. Unknown IDs return domainauth.ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}

	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("redis get session: %w", err)
	}
	if len(fields) == 0 {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}

	sess, err := decodeSession(id, fields)
	if err != nil {
		return domainauth.Session{}, err
	}
	return sess, nil
}

// Delete removes a session. Empty and unknown IDs are not errors.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func decodeSession(id string, fields map[string]string) (domainauth.Session, error) {
	expires, err := time.Parse(time.RFC3339Nano, fields[fieldExpires])
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("decode session %s expiry: %w", id, err)
	}
	verified, err := strconv.ParseBool(fields[fieldVerified])
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("decode session %s verified flag: %w", id, err)
	}
	return domainauth.Session{
		ID:                id,
		UserID:            fields[fieldUserID],
		Email:             fields[fieldEmail],
		TwoFactorVerified: verified,
		ExpiresAt:         expires,
	}, nil
}
