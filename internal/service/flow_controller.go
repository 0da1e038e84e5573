package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/target/duogate/internal/domain/twofactor"
	apperrors "github.com/target/duogate/internal/errors"
	"github.com/target/duogate/internal/observability/metrics"
	"github.com/target/duogate/internal/observability/statsd"
	"github.com/target/duogate/internal/ports"
)

// StateOptions configures how state tokens are minted and consumed.
type StateOptions struct {
	Protector ports.StateProtector // Required
	Lifetime  time.Duration        // Defaults to twofactor.DefaultStateTokenLifetime
	// ReplayGuard is optional. When nil an authorization code may be validated more than once.
	ReplayGuard ports.ReplayGuard
	Now         func() time.Time
	NewID       func() string
}

// ControllerOptions groups dependencies for Controller.
type ControllerOptions struct {
	Builder  *ClientBuilder // Required
	State    StateOptions
	Observer Observer
}

// Controller runs the authorization request and callback validation flows for
// any principal kind supplied through a PrincipalResolver.
type Controller struct {
	builder   *ClientBuilder
	protector ports.StateProtector
	guard     ports.ReplayGuard
	lifetime  time.Duration
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewController constructs a Controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Builder == nil {
		panic("ClientBuilder is required")
	}
	if opts.State.Protector == nil {
		panic("StateProtector is required")
	}
	c := &Controller{
		builder:   opts.Builder,
		protector: opts.State.Protector,
		guard:     opts.State.ReplayGuard,
		lifetime:  opts.State.Lifetime,
		now:       opts.State.Now,
		newID:     opts.State.NewID,
		logger:    opts.Observer.logger(),
		metrics:   opts.Observer.Metrics,
	}
	if c.lifetime <= 0 {
		c.lifetime = twofactor.DefaultStateTokenLifetime
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = func() string { return uuid.NewString() }
	}
	return c
}

// GenerateRequest builds the provider authorization URL for the resolver's principal.
func (c *Controller) GenerateRequest(ctx context.Context, r PrincipalResolver) (res twofactor.GenerateResult, err error) {
	start := time.Now()
	defer func() { c.record(ctx, metrics.FlowGenerate, r, res.Status, res.Reason, start, err) }()

	client, reason, err := c.builder.Build(ctx, r)
	if err != nil {
		return twofactor.GenerateResult{}, err
	}
	if client == nil {
		return generateUnavailable(reason), nil
	}

	principal := r.Principal()
	token := twofactor.NewStateToken(c.newID(), principal, c.now(), c.lifetime)
	state, err := c.protector.Protect(token)
	if err != nil {
		return twofactor.GenerateResult{}, fmt.Errorf("protect state token: %w", err)
	}

	redirectURL, err := client.AuthorizationURL(principal.Email, state)
	if err != nil {
		c.logger.ErrorContext(ctx, "unable to build duo authorization url", append(r.LogAttrs(), "error", err)...)
		return generateUnavailable(twofactor.ReasonAuthorizationURL), nil
	}

	return twofactor.GenerateResult{Status: twofactor.StatusSuccess, RedirectURL: redirectURL}, nil
}

// ValidateCallback checks a "code|state" payload and exchanges the code for the provider's verdict.
// Every fail-closed path yields a non-success result; only lookup failures and
// provider transport failures are returned as errors.
func (c *Controller) ValidateCallback(
	ctx context.Context,
	r PrincipalResolver,
	payload string,
) (res twofactor.ValidateResult, err error) {
	start := time.Now()
	defer func() { c.record(ctx, metrics.FlowValidate, r, res.Status, res.Reason, start, err) }()

	client, reason, err := c.builder.Build(ctx, r)
	if err != nil {
		return twofactor.ValidateResult{}, err
	}
	if client == nil {
		return twofactor.ValidateResult{Status: twofactor.StatusUnavailable, Reason: reason}, nil
	}

	cb, err := twofactor.ParseCallback(payload)
	if err != nil {
		return validateInvalid(twofactor.ReasonMalformedCallback), nil
	}

	principal := r.Principal()
	token, ok := c.protector.TryUnprotect(cb.State)
	switch {
	case !ok:
		return validateInvalid(twofactor.ReasonStateUnprotect), nil
	case !token.Valid(c.now()):
		return validateInvalid(twofactor.ReasonStateInvalid), nil
	case !token.MatchesPrincipal(principal):
		return validateInvalid(twofactor.ReasonStateMismatch), nil
	}

	if c.guard != nil {
		first, claimErr := c.guard.Claim(ctx, cb.Code, c.lifetime)
		if claimErr != nil {
			return twofactor.ValidateResult{}, fmt.Errorf("claim authorization code: %w", claimErr)
		}
		if !first {
			return validateInvalid(twofactor.ReasonCodeReplayed), nil
		}
	}

	result, err := client.ExchangeCode(ctx, cb.Code, principal.Email)
	if errors.Is(err, ports.ErrUntrustedExchange) {
		return twofactor.ValidateResult{}, apperrors.Wrap(err, apperrors.ErrCodeUntrusted, "verify duo exchange response")
	}
	if err != nil {
		return twofactor.ValidateResult{}, apperrors.Wrap(err, apperrors.ErrCodeUpstream, "exchange duo authorization code")
	}
	if result == nil {
		return twofactor.ValidateResult{Status: twofactor.StatusDenied, Reason: twofactor.ReasonNoResult}, nil
	}
	if !result.Verdict.Allowed() {
		return twofactor.ValidateResult{
			Status:  twofactor.StatusDenied,
			Reason:  twofactor.ReasonVerdictDenied,
			Verdict: result.Verdict,
		}, nil
	}
	return twofactor.ValidateResult{Status: twofactor.StatusSuccess, Verdict: result.Verdict}, nil
}

func (c *Controller) record(
	ctx context.Context,
	flow string,
	r PrincipalResolver,
	status twofactor.Status,
	reason twofactor.Reason,
	start time.Time,
	err error,
) {
	metrics.EmitTwoFactorOutcome(c.metrics, metrics.TwoFactorMetric{
		Flow:     flow,
		Scope:    string(r.Scope()),
		Status:   string(status),
		Reason:   string(reason),
		Duration: time.Since(start),
		Err:      err,
	})

	attrs := append(r.LogAttrs(), "flow", flow, "scope", string(r.Scope()))
	switch {
	case err != nil:
		c.logger.ErrorContext(ctx, "two-factor flow failed", append(attrs, "error", err)...)
	case status != twofactor.StatusSuccess:
		c.logger.InfoContext(ctx, "two-factor flow rejected", append(attrs, "status", string(status), "reason", string(reason))...)
	default:
		c.logger.DebugContext(ctx, "two-factor flow succeeded", attrs...)
	}
}

func generateUnavailable(reason twofactor.Reason) twofactor.GenerateResult {
	return twofactor.GenerateResult{Status: twofactor.StatusUnavailable, Reason: reason}
}

func validateInvalid(reason twofactor.Reason) twofactor.ValidateResult {
	return twofactor.ValidateResult{Status: twofactor.StatusInvalid, Reason: reason}
}
