package ports

import (
	"context"
	"errors"
	"time"

	"github.com/target/duogate/internal/domain/twofactor"
)

// UserRepository loads individual principals together with their stored provider configuration.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*twofactor.User, error)
}

// OrganizationRepository loads an organization in the context of one of its members.
type OrganizationRepository interface {
	GetForMember(ctx context.Context, orgID, userID string) (*twofactor.Organization, error)
}

// PremiumChecker answers whether a user currently holds the premium capability.
type PremiumChecker interface {
	CanAccessPremium(ctx context.Context, user twofactor.User) (bool, error)
}

// StateProtector protects and unprotects state tokens carried through the provider redirect.
// TryUnprotect never returns an error; any failure is reported as ok == false.
type StateProtector interface {
	Protect(token twofactor.StateToken) (string, error)
	TryUnprotect(protected string) (twofactor.StateToken, bool)
}

// ClientOptions carries the inputs needed to construct a provider client.
type ClientOptions struct {
	ClientID     string
	ClientSecret string
	Host         string
	RedirectURI  string
}

// ExchangeResult is the provider's answer to a code exchange.
type ExchangeResult struct {
	Verdict       twofactor.Verdict
	Status        string
	StatusMessage string
	Username      string
}

// ProviderClient talks to one configured provider tenant.
type ProviderClient interface {
	// HealthCheck reports whether the provider accepts our credentials and is reachable.
	HealthCheck(ctx context.Context) (bool, error)
	// AuthorizationURL returns the URL the browser is redirected to.
	AuthorizationURL(username, state string) (string, error)
	// ExchangeCode trades an authorization code for the provider's verdict.
	// Transport failures are returned as errors.
	ExchangeCode(ctx context.Context, code, username string) (*ExchangeResult, error)
}

// ErrUntrustedExchange marks an exchange whose response arrived but failed
// verification, such as a bad id_token signature or a different username.
var ErrUntrustedExchange = errors.New("provider exchange response failed verification")

// ProviderClientFactory constructs provider clients.
type ProviderClientFactory interface {
	Build(opts ClientOptions) (ProviderClient, error)
}

// ReplayGuard records authorization codes so each is accepted at most once.
type ReplayGuard interface {
	// Claim returns true the first time key is seen within ttl.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
