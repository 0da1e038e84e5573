package twofactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usableConfig() ProviderConfig {
	return ProviderConfig{
		Type:    ProviderTypeDuo,
		Enabled: true,
		Duo:     DuoMetadata{ClientID: "id1", ClientSecret: "sec1", Host: "host1"},
	}
}

func TestIsUsable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProviderConfig)
		want   bool
	}{
		{name: "complete and enabled", mutate: func(*ProviderConfig) {}, want: true},
		{name: "disabled", mutate: func(c *ProviderConfig) { c.Enabled = false }, want: false},
		{name: "missing client id", mutate: func(c *ProviderConfig) { c.Duo.ClientID = "" }, want: false},
		{name: "missing client secret", mutate: func(c *ProviderConfig) { c.Duo.ClientSecret = "" }, want: false},
		{name: "missing host", mutate: func(c *ProviderConfig) { c.Duo.Host = "" }, want: false},
		{name: "blank host", mutate: func(c *ProviderConfig) { c.Duo.Host = "   " }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := usableConfig()
			tt.mutate(&cfg)
			assert.Equal(t, tt.want, IsUsable(cfg))
		})
	}
}

func TestProviders_Get(t *testing.T) {
	var empty Providers
	_, ok := empty.Get(ProviderTypeDuo)
	assert.False(t, ok)

	p := Providers{ProviderTypeDuo: {Enabled: true}}
	cfg, ok := p.Get(ProviderTypeDuo)
	require.True(t, ok)
	assert.Equal(t, ProviderTypeDuo, cfg.Type)

	_, ok = p.Get(ProviderTypeOrganizationDuo)
	assert.False(t, ok)
}

func TestMembershipStatus_Valid(t *testing.T) {
	for _, s := range []MembershipStatus{MembershipInvited, MembershipAccepted, MembershipConfirmed} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, MembershipStatus("").Valid())
	assert.False(t, MembershipStatus("Confirmed").Valid())
}

func TestProviderType_String(t *testing.T) {
	assert.Equal(t, "duo", ProviderTypeDuo.String())
	assert.Equal(t, "organization_duo", ProviderTypeOrganizationDuo.String())
	assert.Equal(t, "provider_9", ProviderType(9).String())
}

func TestParseCallback(t *testing.T) {
	cb, err := ParseCallback("code123|state456")
	require.NoError(t, err)
	assert.Equal(t, "code123", cb.Code)
	assert.Equal(t, "state456", cb.State)
	assert.Equal(t, "code123|state456", cb.String())

	for _, payload := range []string{"", "code123", "|state", "code|", "|", "a|b|c"} {
		_, err := ParseCallback(payload)
		assert.ErrorIs(t, err, ErrMalformedCallback, "payload %q", payload)
	}
}

func TestStateToken_ValidAndBinding(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	alice := User{ID: "user-a", Email: "a@example.com"}
	bob := User{ID: "user-b", Email: "b@example.com"}

	tok := NewStateToken("tok-1", alice, now, 0)
	assert.Equal(t, StateTokenIdentifier, tok.Identifier)
	assert.Equal(t, now.Add(DefaultStateTokenLifetime), tok.ExpiresAt)

	assert.True(t, tok.Valid(now))
	assert.True(t, tok.Valid(now.Add(DefaultStateTokenLifetime-time.Second)))
	assert.False(t, tok.Valid(now.Add(DefaultStateTokenLifetime)))

	assert.True(t, tok.MatchesPrincipal(alice))
	assert.False(t, tok.MatchesPrincipal(bob))

	forged := tok
	forged.Identifier = "SomethingElse"
	assert.False(t, forged.Valid(now))

	anonymous := tok
	anonymous.UserID = ""
	assert.False(t, anonymous.Valid(now))
	assert.False(t, anonymous.MatchesPrincipal(User{}))
}

func TestResults_OK(t *testing.T) {
	assert.True(t, GenerateResult{Status: StatusSuccess, RedirectURL: "https://x"}.OK())
	assert.False(t, GenerateResult{Status: StatusSuccess}.OK())
	assert.False(t, GenerateResult{Status: StatusUnavailable}.OK())

	assert.True(t, ValidateResult{Status: StatusSuccess, Verdict: VerdictAllow}.OK())
	assert.False(t, ValidateResult{Status: StatusDenied, Verdict: "deny"}.OK())

	assert.True(t, VerdictAllow.Allowed())
	assert.False(t, Verdict("Allow").Allowed())
	assert.False(t, Verdict("").Allowed())
}
