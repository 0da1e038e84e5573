// Package config declares every setting duogate reads from the environment.
//
// Values are parsed with github.com/caarlos0/env, then Sanitize fills defaults
// and clamps ranges, and Validate rejects settings that are unsafe outside
// development. Settings are grouped per concern:
//   - twofactor.go: Duo redirect and state token settings (TWOFACTOR_*)
//   - database.go: Postgres (DB_*) and Redis (REDIS_*)
//   - http.go: listener, timeouts and cookie domain
//   - observability.go: log level, StatsD and Prometheus
package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

const defaultSessionTTL = 8 * time.Hour

// AppConfig is the root of the configuration tree.
type AppConfig struct {
	// IsDev relaxes key requirements and switches logs to text.
	// DEV=true or NODE_ENV=development enables it.
	IsDev bool `env:"DEV" envDefault:"false"`

	// DataEncryptionKey protects stored provider configuration at rest.
	DataEncryptionKey string `env:"DATA_ENCRYPTION_KEY"`

	TwoFactor TwoFactorConfig `envPrefix:"TWOFACTOR_"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP    HTTPConfig
	Session SessionConfig `envPrefix:"SESSION_"`

	Observability ObservabilityConfig
}

// Sanitize normalizes every section in place.
func (c *AppConfig) Sanitize() {
	if !c.IsDev {
		switch strings.ToLower(os.Getenv("NODE_ENV")) {
		case "development", "dev":
			c.IsDev = true
		}
	}
	c.TwoFactor.Sanitize()
	c.Postgres.Sanitize()
	c.HTTP.Sanitize()
	c.Session.Sanitize()
	c.Observability.Sanitize()
}

// Validate reports every setting that is unsafe outside development mode.
func (c *AppConfig) Validate() error {
	if c.IsDev {
		return nil
	}
	var errs []error
	if strings.TrimSpace(c.DataEncryptionKey) == "" {
		errs = append(errs, errors.New("DATA_ENCRYPTION_KEY is required outside development"))
	}
	errs = append(errs, c.TwoFactor.Validate())
	return errors.Join(errs...)
}

// SessionConfig bounds first-factor sessions created by the dev seed and admin tooling.
type SessionConfig struct {
	TTL time.Duration `env:"TTL" envDefault:"8h"`
}

func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = defaultSessionTTL
	}
}
