package twofactor

// Package twofactor contains domain types for the Duo second factor.
// It is pure and free of framework/adapter concerns.

import (
	"strconv"
	"strings"
)

// ProviderType identifies a second-factor provider slot on a user or organization.
// Numeric values match the persisted provider map keys.
type ProviderType int

const (
	// ProviderTypeDuo is the per-user Duo configuration.
	ProviderTypeDuo ProviderType = 2
	// ProviderTypeOrganizationDuo is the organization-wide Duo policy configuration.
	ProviderTypeOrganizationDuo ProviderType = 6
)

func (t ProviderType) String() string {
	switch t {
	case ProviderTypeDuo:
		return "duo"
	case ProviderTypeOrganizationDuo:
		return "organization_duo"
	default:
		return "provider_" + strconv.Itoa(int(t))
	}
}

// DuoMetadata holds the three provider fields required to build a client.
type DuoMetadata struct {
	ClientID     string
	ClientSecret string
	Host         string
}

// ProviderConfig is the stored configuration for one provider slot.
type ProviderConfig struct {
	Type    ProviderType
	Enabled bool
	Duo     DuoMetadata
}

// Providers maps a provider slot to its stored configuration.
type Providers map[ProviderType]ProviderConfig

// Get returns the configuration stored for t, if any.
func (p Providers) Get(t ProviderType) (ProviderConfig, bool) {
	if p == nil {
		return ProviderConfig{}, false
	}
	cfg, ok := p[t]
	if ok {
		cfg.Type = t
	}
	return cfg, ok
}

// IsUsable reports whether cfg is enabled and carries all three metadata fields.
func IsUsable(cfg ProviderConfig) bool {
	if !cfg.Enabled {
		return false
	}
	return notBlank(cfg.Duo.ClientID) && notBlank(cfg.Duo.ClientSecret) && notBlank(cfg.Duo.Host)
}

func notBlank(s string) bool { return strings.TrimSpace(s) != "" }

// User is an individual principal.
type User struct {
	ID        string
	Email     string
	Premium   bool
	Providers Providers
}

// Organization is an organization principal whose policy may force Duo on its members.
type Organization struct {
	ID              string
	Name            string
	Enabled         bool
	Use2FA          bool
	UsersGetPremium bool
	Providers       Providers
}

// MembershipStatus is where a user stands in joining an organization.
// Only confirmed members receive anything the organization grants.
type MembershipStatus string

const (
	MembershipInvited   MembershipStatus = "invited"
	MembershipAccepted  MembershipStatus = "accepted"
	MembershipConfirmed MembershipStatus = "confirmed"
)

// Valid reports whether s is a known status.
func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipInvited, MembershipAccepted, MembershipConfirmed:
		return true
	}
	return false
}

// Scope names which principal kind a flow runs for.
type Scope string

const (
	ScopeUser         Scope = "user"
	ScopeOrganization Scope = "organization"
)
