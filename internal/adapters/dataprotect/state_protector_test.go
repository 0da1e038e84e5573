package dataprotect

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/duogate/internal/data/cryptoutil"
	"github.com/target/duogate/internal/domain/twofactor"
)

func newSealer(t *testing.T, fill byte) *cryptoutil.AESGCMEncryptor {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = fill
	}
	enc, err := cryptoutil.NewAESGCMEncryptor(key)
	require.NoError(t, err)
	return enc
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func TestStateProtector_RoundTrip(t *testing.T) {
	c := &clock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	p := NewStateProtector(StateProtectorOptions{Sealer: newSealer(t, 1), Now: c.Now})

	user := twofactor.User{ID: "user-a", Email: "a@example.com"}
	token := twofactor.NewStateToken("tok-1", user, c.t, 0)

	protected, err := p.Protect(token)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(protected, DefaultPrefix))
	assert.NotContains(t, protected, "user-a")
	assert.GreaterOrEqual(t, len(protected), 22)
	assert.LessOrEqual(t, len(protected), 1024)

	got, ok := p.TryUnprotect(protected)
	require.True(t, ok)
	assert.True(t, got.Valid(c.t))
	assert.True(t, got.MatchesPrincipal(user))
	assert.Equal(t, token.ID, got.ID)
	assert.True(t, token.ExpiresAt.Equal(got.ExpiresAt))
}

func TestStateProtector_RejectsExpired(t *testing.T) {
	c := &clock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	p := NewStateProtector(StateProtectorOptions{Sealer: newSealer(t, 1), Now: c.Now})

	protected, err := p.Protect(twofactor.NewStateToken("tok-1", twofactor.User{ID: "u"}, c.t, time.Minute))
	require.NoError(t, err)

	c.t = c.t.Add(time.Minute)
	_, ok := p.TryUnprotect(protected)
	assert.False(t, ok)
}

func TestStateProtector_RejectsTamperingAndForeignKeys(t *testing.T) {
	now := time.Now()
	p := NewStateProtector(StateProtectorOptions{Sealer: newSealer(t, 1)})
	protected, err := p.Protect(twofactor.NewStateToken("tok-1", twofactor.User{ID: "u"}, now, 0))
	require.NoError(t, err)

	other := NewStateProtector(StateProtectorOptions{Sealer: newSealer(t, 2)})
	_, ok := other.TryUnprotect(protected)
	assert.False(t, ok, "different key")

	otherPurpose := NewStateProtector(StateProtectorOptions{Sealer: newSealer(t, 1), Purpose: "SomethingElse"})
	_, ok = otherPurpose.TryUnprotect(protected)
	assert.False(t, ok, "different purpose")

	last := protected[len(protected)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	_, ok = p.TryUnprotect(protected[:len(protected)-1] + string(flipped))
	assert.False(t, ok, "tampered")

	for _, bad := range []string{"", DefaultPrefix, "garbage", DefaultPrefix + "!!!", strings.TrimPrefix(protected, DefaultPrefix)} {
		_, ok := p.TryUnprotect(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

func TestStateProtector_ProtectRequiresUser(t *testing.T) {
	p := NewStateProtector(StateProtectorOptions{Sealer: newSealer(t, 1)})
	_, err := p.Protect(twofactor.StateToken{Identifier: twofactor.StateTokenIdentifier})
	require.Error(t, err)
}

func TestNewStateProtector_RequiresSealer(t *testing.T) {
	assert.Panics(t, func() { NewStateProtector(StateProtectorOptions{}) })
}
