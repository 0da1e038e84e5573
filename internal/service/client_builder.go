package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/target/duogate/internal/domain/twofactor"
	"github.com/target/duogate/internal/observability/metrics"
	"github.com/target/duogate/internal/observability/statsd"
	"github.com/target/duogate/internal/ports"
)

const (
	// DefaultConnectorPath is appended to the vault URL to form the redirect target.
	DefaultConnectorPath = "/duo-redirect-connector.html"
	// DefaultClientName is used when the request does not name its application.
	DefaultClientName = "web"
)

// RedirectConfig describes where the provider sends the browser back to.
type RedirectConfig struct {
	VaultURL          string
	ConnectorPath     string
	DefaultClientName string
}

// Observer bundles the optional logging and metrics sinks shared by the two-factor services.
type Observer struct {
	Logger  *slog.Logger
	Metrics statsd.Sink
}

func (o Observer) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// ClientBuilderOptions groups dependencies for ClientBuilder.
type ClientBuilderOptions struct {
	Factory  ports.ProviderClientFactory // Required
	Redirect RedirectConfig
	Observer Observer
}

// ClientBuilder builds a fresh provider client per attempt and refuses to hand
// out one that fails its health check.
type ClientBuilder struct {
	factory  ports.ProviderClientFactory
	redirect RedirectConfig
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewClientBuilder constructs a ClientBuilder.
func NewClientBuilder(opts ClientBuilderOptions) *ClientBuilder {
	if opts.Factory == nil {
		panic("ProviderClientFactory is required")
	}
	redirect := opts.Redirect
	if strings.TrimSpace(redirect.ConnectorPath) == "" {
		redirect.ConnectorPath = DefaultConnectorPath
	}
	if strings.TrimSpace(redirect.DefaultClientName) == "" {
		redirect.DefaultClientName = DefaultClientName
	}
	return &ClientBuilder{
		factory:  opts.Factory,
		redirect: redirect,
		logger:   opts.Observer.logger(),
		metrics:  opts.Observer.Metrics,
	}
}

// RedirectURI returns "{vault}{connector}?client={name}", substituting the default name when clientName is blank.
func (b *ClientBuilder) RedirectURI(clientName string) string {
	name := strings.TrimSpace(clientName)
	if name == "" {
		name = b.redirect.DefaultClientName
	}
	path := b.redirect.ConnectorPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(b.redirect.VaultURL, "/") + path + "?client=" + url.QueryEscape(name)
}

// Build resolves the principal's usable configuration, constructs a client and healthChecks it.
// A nil client comes with the Reason it was withheld. Only lookup failures and
// context cancellation are returned as errors.
func (b *ClientBuilder) Build(ctx context.Context, resolver PrincipalResolver) (ports.ProviderClient, twofactor.Reason, error) {
	cfg, ok, err := resolver.UsableConfig(ctx)
	if err != nil {
		return nil, twofactor.ReasonNone, fmt.Errorf("resolve duo configuration: %w", err)
	}
	if !ok {
		return nil, twofactor.ReasonNotConfigured, nil
	}

	redirectURI := b.RedirectURI(resolver.RedirectContext(ctx).ClientName)
	client, err := b.factory.Build(ports.ClientOptions{
		ClientID:     cfg.Duo.ClientID,
		ClientSecret: cfg.Duo.ClientSecret,
		Host:         cfg.Duo.Host,
		RedirectURI:  redirectURI,
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "unable to build duo client", append(resolver.LogAttrs(), "error", err)...)
		return nil, twofactor.ReasonClientBuild, nil
	}

	start := time.Now()
	healthy, err := client.HealthCheck(ctx)
	metrics.EmitHealthCheck(b.metrics, string(resolver.Scope()), healthy && err == nil, time.Since(start))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, twofactor.ReasonNone, fmt.Errorf("duo health check: %w", ctxErr)
	}
	if err != nil || !healthy {
		attrs := append(resolver.LogAttrs(), "host", cfg.Duo.Host)
		if err != nil {
			attrs = append(attrs, "error", err)
		}
		b.logger.ErrorContext(ctx, "unable to connect to duo, health check failed", attrs...)
		return nil, twofactor.ReasonProviderUnreachable, nil
	}
	return client, twofactor.ReasonNone, nil
}
