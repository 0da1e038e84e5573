package service

import (
	"context"

	"github.com/target/duogate/internal/domain/twofactor"
)

// RedirectContext carries the request-scoped inputs of the redirect URI.
type RedirectContext struct {
	// ClientName is the initiating application; empty selects the configured default.
	ClientName string
}

// PrincipalResolver is what a façade supplies to the Controller for one flow.
// It hides which entitlement path and which configuration slot apply.
type PrincipalResolver interface {
	Scope() twofactor.Scope
	// Principal is the user the state token is bound to and whose email is sent to the provider.
	Principal() twofactor.User
	// UsableConfig re-derives entitlement and configuration. ok == false means not configured.
	UsableConfig(ctx context.Context) (cfg twofactor.ProviderConfig, ok bool, err error)
	RedirectContext(ctx context.Context) RedirectContext
	// LogAttrs identifies the principal in log lines.
	LogAttrs() []any
}

type userResolver struct {
	gate *EntitlementGate
	user *twofactor.User
}

func (r userResolver) Scope() twofactor.Scope { return twofactor.ScopeUser }

func (r userResolver) Principal() twofactor.User {
	if r.user == nil {
		return twofactor.User{}
	}
	return *r.user
}

func (r userResolver) UsableConfig(ctx context.Context) (twofactor.ProviderConfig, bool, error) {
	return r.gate.UserCanUse(ctx, r.user)
}

func (r userResolver) RedirectContext(ctx context.Context) RedirectContext {
	return RedirectContext{ClientName: InitiatingClient(ctx)}
}

func (r userResolver) LogAttrs() []any {
	return []any{"user_id", r.Principal().ID}
}

type organizationResolver struct {
	gate *EntitlementGate
	org  *twofactor.Organization
	user *twofactor.User
}

func (r organizationResolver) Scope() twofactor.Scope { return twofactor.ScopeOrganization }

func (r organizationResolver) Principal() twofactor.User {
	if r.user == nil {
		return twofactor.User{}
	}
	return *r.user
}

func (r organizationResolver) UsableConfig(context.Context) (twofactor.ProviderConfig, bool, error) {
	cfg, ok := r.gate.OrganizationCanUse(r.org)
	return cfg, ok, nil
}

func (r organizationResolver) RedirectContext(ctx context.Context) RedirectContext {
	return RedirectContext{ClientName: InitiatingClient(ctx)}
}

func (r organizationResolver) LogAttrs() []any {
	orgID := ""
	if r.org != nil {
		orgID = r.org.ID
	}
	return []any{"organization_id", orgID, "user_id", r.Principal().ID}
}
