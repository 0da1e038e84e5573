package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/duogate/internal/domain/auth"
	"github.com/target/duogate/internal/domain/twofactor"
)

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	require.Error(t, store.Save(ctx, domainauth.Session{UserID: "user-123"}))

	sess := domainauth.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.Save(ctx, sess))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err, "expired sessions are returned as stored")
	assert.Equal(t, sess, got)

	sess.TwoFactorVerified = true
	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 2, store.Saves())

	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, ""))
	assert.Zero(t, store.Len())
}

func TestStaticPremiumChecker(t *testing.T) {
	ctx := context.Background()

	ok, err := StaticPremiumChecker{}.CanAccessPremium(ctx, twofactor.User{Premium: true})
	require.NoError(t, err)
	assert.True(t, ok)

	no := false
	ok, err = StaticPremiumChecker{Override: &no}.CanAccessPremium(ctx, twofactor.User{Premium: true})
	require.NoError(t, err)
	assert.False(t, ok)

	boom := errors.New("billing down")
	_, err = StaticPremiumChecker{Err: boom}.CanAccessPremium(ctx, twofactor.User{})
	assert.ErrorIs(t, err, boom)
}
