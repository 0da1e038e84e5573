package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/duogate/internal/domain/twofactor"
	"github.com/target/duogate/internal/ports"
)

// EntitlementGateOptions groups dependencies for EntitlementGate.
type EntitlementGateOptions struct {
	Premium ports.PremiumChecker // Required
	Logger  *slog.Logger         // Optional
}

// EntitlementGate decides whether a principal may use Duo at all and, if so,
// hands back the configuration the decision was made on.
type EntitlementGate struct {
	premium ports.PremiumChecker
	logger  *slog.Logger
}

// NewEntitlementGate constructs an EntitlementGate.
func NewEntitlementGate(opts EntitlementGateOptions) *EntitlementGate {
	if opts.Premium == nil {
		panic("PremiumChecker is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EntitlementGate{premium: opts.Premium, logger: logger}
}

// UserCanUse returns the user's Duo configuration when the user holds premium
// and the configuration is usable. A failed premium lookup is returned as an error.
func (g *EntitlementGate) UserCanUse(ctx context.Context, user *twofactor.User) (twofactor.ProviderConfig, bool, error) {
	if user == nil {
		return twofactor.ProviderConfig{}, false, nil
	}

	premium, err := g.premium.CanAccessPremium(ctx, *user)
	if err != nil {
		return twofactor.ProviderConfig{}, false, fmt.Errorf("check premium access: %w", err)
	}
	if !premium {
		g.logger.DebugContext(ctx, "duo not available: user lacks premium", "user_id", user.ID)
		return twofactor.ProviderConfig{}, false, nil
	}

	cfg, ok := user.Providers.Get(twofactor.ProviderTypeDuo)
	if !ok || !twofactor.IsUsable(cfg) {
		g.logger.DebugContext(ctx, "duo not available: user configuration incomplete", "user_id", user.ID)
		return twofactor.ProviderConfig{}, false, nil
	}
	return cfg, true, nil
}

// OrganizationCanUse returns the organization's Duo configuration when the
// organization is enabled, has its two-factor policy on, and the configuration is usable.
func (g *EntitlementGate) OrganizationCanUse(org *twofactor.Organization) (twofactor.ProviderConfig, bool) {
	if org == nil || !org.Enabled || !org.Use2FA {
		return twofactor.ProviderConfig{}, false
	}
	cfg, ok := org.Providers.Get(twofactor.ProviderTypeOrganizationDuo)
	if !ok || !twofactor.IsUsable(cfg) {
		g.logger.Debug("duo not available: organization configuration incomplete", "organization_id", org.ID)
		return twofactor.ProviderConfig{}, false
	}
	return cfg, true
}
