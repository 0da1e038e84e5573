package config

import (
	"errors"
	"strings"
	"time"
)

const (
	defaultConnectorPath      = "/duo-redirect-connector.html"
	defaultClientName         = "web"
	defaultStateTokenLifetime = 15 * time.Minute
	defaultProviderTimeout    = 10 * time.Second
	maxStateTokenLifetime     = time.Hour
)

// TwoFactorConfig contains Duo flow configuration.
type TwoFactorConfig struct {
	// VaultURL is the public base URL the connector page is served from.
	VaultURL string `env:"VAULT_URL" envDefault:"http://localhost:8080"`
	// ConnectorPath is appended to VaultURL to form the Duo redirect target.
	ConnectorPath string `env:"CONNECTOR_PATH" envDefault:"/duo-redirect-connector.html"`
	// DefaultClientName is used when a request does not name its application.
	DefaultClientName string `env:"DEFAULT_CLIENT_NAME" envDefault:"web"`
	// ClientNameHeader names the request header carrying the initiating application.
	ClientNameHeader string `env:"CLIENT_NAME_HEADER" envDefault:"X-Client-Name"`

	// StateTokenKey protects state tokens; 64 hex characters or any passphrase.
	StateTokenKey      string        `env:"STATE_TOKEN_KEY"`
	StateTokenLifetime time.Duration `env:"STATE_TOKEN_LIFETIME" envDefault:"15m"`

	// ReplayGuardEnabled makes each authorization code single-use via Redis.
	ReplayGuardEnabled bool `env:"REPLAY_GUARD_ENABLED" envDefault:"false"`

	// ProviderTimeout bounds each HTTP call to the Duo API.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to two-factor configuration values.
func (c *TwoFactorConfig) Sanitize() {
	c.VaultURL = strings.TrimRight(strings.TrimSpace(c.VaultURL), "/")
	c.ConnectorPath = strings.TrimSpace(c.ConnectorPath)
	if c.ConnectorPath == "" {
		c.ConnectorPath = defaultConnectorPath
	}
	if !strings.HasPrefix(c.ConnectorPath, "/") {
		c.ConnectorPath = "/" + c.ConnectorPath
	}
	if c.DefaultClientName = strings.TrimSpace(c.DefaultClientName); c.DefaultClientName == "" {
		c.DefaultClientName = defaultClientName
	}
	c.ClientNameHeader = strings.TrimSpace(c.ClientNameHeader)
	if c.StateTokenLifetime <= 0 {
		c.StateTokenLifetime = defaultStateTokenLifetime
	}
	if c.StateTokenLifetime > maxStateTokenLifetime {
		c.StateTokenLifetime = maxStateTokenLifetime
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = defaultProviderTimeout
	}
}

// Validate reports missing production settings.
func (c *TwoFactorConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.StateTokenKey) == "" {
		errs = append(errs, errors.New("TWOFACTOR_STATE_TOKEN_KEY is required outside development"))
	}
	if !strings.HasPrefix(c.VaultURL, "https://") {
		errs = append(errs, errors.New("TWOFACTOR_VAULT_URL must use https outside development"))
	}
	return errors.Join(errs...)
}
