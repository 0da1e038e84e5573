package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/duogate/internal/domain/auth"
	mocks "github.com/target/duogate/internal/mocks/auth"
)

// mockSessionStore is a test helper for testing session store errors.
type mockSessionStore struct {
	saveFunc   func(context.Context, domainauth.Session) error
	getFunc    func(context.Context, string) (domainauth.Session, error)
	deleteFunc func(context.Context, string) error
}

func (m *mockSessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, sess)
	}
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return domainauth.Session{}, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func newTestSessionService(now time.Time) (*SessionService, *mocks.MemorySessionStore) {
	store := mocks.NewMemorySessionStore()
	svc := NewSessionService(SessionServiceOptions{
		Sessions: store,
		Now:      func() time.Time { return now },
	})
	return svc, store
}

func TestNewSessionService_PanicsWithoutStore(t *testing.T) {
	assert.Panics(t, func() { NewSessionService(SessionServiceOptions{}) })
}

func TestSessionService_CreateAndGet(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestSessionService(now)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, CreateSessionInput{UserID: "user-1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.False(t, sess.TwoFactorVerified)
	assert.Equal(t, now.Add(DefaultSessionTTL), sess.ExpiresAt)

	got, err := svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, *sess, *got)
}

func TestSessionService_CreateRequiresUser(t *testing.T) {
	svc, _ := newTestSessionService(time.Now())
	_, err := svc.CreateSession(context.Background(), CreateSessionInput{UserID: "  "})
	require.Error(t, err)
}

func TestSessionService_GetSession_Expired(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, store := newTestSessionService(now)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "old", UserID: "u", ExpiresAt: now.Add(-time.Minute)}))

	_, err := svc.GetSession(ctx, "old")
	require.ErrorIs(t, err, ErrSessionExpired)

	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound, "expired session is removed")
}

func TestSessionService_GetSession_ExpiredDeleteFails(t *testing.T) {
	now := time.Now()
	store := &mockSessionStore{
		getFunc: func(context.Context, string) (domainauth.Session, error) {
			return domainauth.Session{ID: "s", ExpiresAt: now.Add(-time.Second)}, nil
		},
		deleteFunc: func(context.Context, string) error { return errors.New("redis down") },
	}
	svc := NewSessionService(SessionServiceOptions{Sessions: store, Now: func() time.Time { return now }})

	_, err := svc.GetSession(context.Background(), "s")
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Contains(t, err.Error(), "redis down")
}

func TestSessionService_GetSession_Errors(t *testing.T) {
	svc, _ := newTestSessionService(time.Now())

	_, err := svc.GetSession(context.Background(), "")
	require.Error(t, err)

	_, err = svc.GetSession(context.Background(), "missing")
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionService_MarkTwoFactorVerified(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestSessionService(now)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, CreateSessionInput{UserID: "user-1", TTL: time.Hour})
	require.NoError(t, err)

	require.NoError(t, svc.MarkTwoFactorVerified(ctx, sess.ID))
	got, err := svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.TwoFactorVerified)

	// Idempotent.
	require.NoError(t, svc.MarkTwoFactorVerified(ctx, sess.ID))
}

func TestSessionService_MarkTwoFactorVerified_SaveError(t *testing.T) {
	store := &mockSessionStore{
		getFunc: func(_ context.Context, id string) (domainauth.Session, error) {
			return domainauth.Session{ID: id, UserID: "u"}, nil
		},
		saveFunc: func(context.Context, domainauth.Session) error { return errors.New("write failed") },
	}
	svc := NewSessionService(SessionServiceOptions{Sessions: store})

	err := svc.MarkTwoFactorVerified(context.Background(), "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save session")
}

func TestSessionService_Logout(t *testing.T) {
	svc, store := newTestSessionService(time.Now())
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, ""))

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s1", UserID: "u"}))
	require.NoError(t, svc.Logout(ctx, "s1"))
	_, err := store.Get(ctx, "s1")
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	failing := NewSessionService(SessionServiceOptions{Sessions: &mockSessionStore{
		deleteFunc: func(context.Context, string) error { return errors.New("boom") },
	}})
	require.Error(t, failing.Logout(ctx, "s1"))
}
