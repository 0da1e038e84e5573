package service

import (
	"context"

	"github.com/target/duogate/internal/domain/twofactor"
)

// UserProvider is the Duo factor as configured on an individual account.
type UserProvider struct {
	gate       *EntitlementGate
	controller *Controller
}

// NewUserProvider constructs a UserProvider.
func NewUserProvider(gate *EntitlementGate, controller *Controller) *UserProvider {
	if gate == nil || controller == nil {
		panic("EntitlementGate and Controller are required")
	}
	return &UserProvider{gate: gate, controller: controller}
}

func (p *UserProvider) resolver(user *twofactor.User) PrincipalResolver {
	return userResolver{gate: p.gate, user: user}
}

// CanGenerateToken reports whether user is entitled and fully configured. It makes no network call.
func (p *UserProvider) CanGenerateToken(ctx context.Context, user *twofactor.User) (bool, error) {
	_, ok, err := p.gate.UserCanUse(ctx, user)
	return ok, err
}

// Generate returns the authorization URL to send user to.
func (p *UserProvider) Generate(ctx context.Context, user *twofactor.User) (twofactor.GenerateResult, error) {
	return p.controller.GenerateRequest(ctx, p.resolver(user))
}

// Validate checks the callback payload returned for user.
func (p *UserProvider) Validate(ctx context.Context, user *twofactor.User, payload string) (twofactor.ValidateResult, error) {
	return p.controller.ValidateCallback(ctx, p.resolver(user), payload)
}

// CheckHealth builds and health-checks user's client. ReasonNone means healthy.
func (p *UserProvider) CheckHealth(ctx context.Context, user *twofactor.User) (twofactor.Reason, error) {
	_, reason, err := p.controller.builder.Build(ctx, p.resolver(user))
	return reason, err
}

// OrganizationProvider is the Duo factor enforced by an organization's policy on its members.
type OrganizationProvider struct {
	gate       *EntitlementGate
	controller *Controller
}

// NewOrganizationProvider constructs an OrganizationProvider.
func NewOrganizationProvider(gate *EntitlementGate, controller *Controller) *OrganizationProvider {
	if gate == nil || controller == nil {
		panic("EntitlementGate and Controller are required")
	}
	return &OrganizationProvider{gate: gate, controller: controller}
}

func (p *OrganizationProvider) resolver(org *twofactor.Organization, user *twofactor.User) PrincipalResolver {
	return organizationResolver{gate: p.gate, org: org, user: user}
}

// CanGenerateToken reports whether org enforces a usable Duo configuration. It makes no network call.
func (p *OrganizationProvider) CanGenerateToken(_ context.Context, org *twofactor.Organization) (bool, error) {
	_, ok := p.gate.OrganizationCanUse(org)
	return ok, nil
}

// Generate returns the authorization URL to send user, a member of org, to.
func (p *OrganizationProvider) Generate(
	ctx context.Context,
	org *twofactor.Organization,
	user *twofactor.User,
) (twofactor.GenerateResult, error) {
	return p.controller.GenerateRequest(ctx, p.resolver(org, user))
}

// Validate checks the callback payload returned for user under org's policy.
func (p *OrganizationProvider) Validate(
	ctx context.Context,
	org *twofactor.Organization,
	user *twofactor.User,
	payload string,
) (twofactor.ValidateResult, error) {
	return p.controller.ValidateCallback(ctx, p.resolver(org, user), payload)
}

// CheckHealth builds and health-checks org's client. ReasonNone means healthy.
func (p *OrganizationProvider) CheckHealth(ctx context.Context, org *twofactor.Organization) (twofactor.Reason, error) {
	_, reason, err := p.controller.builder.Build(ctx, p.resolver(org, nil))
	return reason, err
}
