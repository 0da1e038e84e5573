package config

import (
	"log/slog"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, "http://localhost:8080", cfg.TwoFactor.VaultURL)
	assert.Equal(t, "/duo-redirect-connector.html", cfg.TwoFactor.ConnectorPath)
	assert.Equal(t, "web", cfg.TwoFactor.DefaultClientName)
	assert.Equal(t, "X-Client-Name", cfg.TwoFactor.ClientNameHeader)
	assert.Equal(t, 15*time.Minute, cfg.TwoFactor.StateTokenLifetime)
	assert.Equal(t, 10*time.Second, cfg.TwoFactor.ProviderTimeout)
	assert.False(t, cfg.TwoFactor.ReplayGuardEnabled)
	assert.Equal(t, "duogate", cfg.Postgres.Name)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 25, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Postgres.ConnMaxLifetime)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Observability.Prometheus.Enabled)
	assert.Equal(t, slog.LevelInfo, cfg.Observability.SlogLevel())
}

func TestAppConfig_ParseTwoFactorEnv(t *testing.T) {
	var cfg AppConfig
	opts := env.Options{Environment: map[string]string{
		"TWOFACTOR_VAULT_URL":            " https://vault.example.com/ ",
		"TWOFACTOR_CONNECTOR_PATH":       "connector.html",
		"TWOFACTOR_DEFAULT_CLIENT_NAME":  "desktop",
		"TWOFACTOR_STATE_TOKEN_KEY":      "secret",
		"TWOFACTOR_STATE_TOKEN_LIFETIME": "5m",
		"TWOFACTOR_REPLAY_GUARD_ENABLED": "true",
		"DB_NAME":                        "other",
		"REDIS_USE_SENTINEL":             "true",
		"SESSION_TTL":                    "1h",
		"LOG_LEVEL":                      "DEBUG",
	}}
	require.NoError(t, env.ParseWithOptions(&cfg, opts))
	cfg.Sanitize()

	assert.Equal(t, "https://vault.example.com", cfg.TwoFactor.VaultURL)
	assert.Equal(t, "/connector.html", cfg.TwoFactor.ConnectorPath)
	assert.Equal(t, "desktop", cfg.TwoFactor.DefaultClientName)
	assert.Equal(t, 5*time.Minute, cfg.TwoFactor.StateTokenLifetime)
	assert.True(t, cfg.TwoFactor.ReplayGuardEnabled)
	assert.Equal(t, "other", cfg.Postgres.Name)
	assert.True(t, cfg.Redis.UseSentinel)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, slog.LevelDebug, cfg.Observability.SlogLevel())
}

func TestTwoFactorConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name  string
		input TwoFactorConfig
		check func(*testing.T, TwoFactorConfig)
	}{
		{
			name:  "blank values fall back to defaults",
			input: TwoFactorConfig{ConnectorPath: "  ", DefaultClientName: " "},
			check: func(t *testing.T, c TwoFactorConfig) {
				assert.Equal(t, defaultConnectorPath, c.ConnectorPath)
				assert.Equal(t, defaultClientName, c.DefaultClientName)
				assert.Equal(t, defaultStateTokenLifetime, c.StateTokenLifetime)
				assert.Equal(t, defaultProviderTimeout, c.ProviderTimeout)
			},
		},
		{
			name:  "lifetime is capped",
			input: TwoFactorConfig{StateTokenLifetime: 48 * time.Hour},
			check: func(t *testing.T, c TwoFactorConfig) {
				assert.Equal(t, maxStateTokenLifetime, c.StateTokenLifetime)
			},
		},
		{
			name:  "trailing slashes trimmed",
			input: TwoFactorConfig{VaultURL: "https://vault.example.com//"},
			check: func(t *testing.T, c TwoFactorConfig) {
				assert.Equal(t, "https://vault.example.com", c.VaultURL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			cfg.Sanitize()
			tt.check(t, cfg)
		})
	}
}

func TestAppConfig_Validate(t *testing.T) {
	t.Run("dev mode skips checks", func(t *testing.T) {
		cfg := AppConfig{IsDev: true}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("production requires keys and https", func(t *testing.T) {
		cfg := AppConfig{TwoFactor: TwoFactorConfig{VaultURL: "http://vault"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATA_ENCRYPTION_KEY")
		assert.Contains(t, err.Error(), "TWOFACTOR_STATE_TOKEN_KEY")
		assert.Contains(t, err.Error(), "https")
	})

	t.Run("production complete", func(t *testing.T) {
		cfg := AppConfig{
			DataEncryptionKey: "k",
			TwoFactor:         TwoFactorConfig{VaultURL: "https://vault", StateTokenKey: "s"},
		}
		assert.NoError(t, cfg.Validate())
	})
}

func TestAppConfig_DetectDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{Enabled: true, StatsdAddress: "   ", Prefix: " "}
	cfg.Sanitize()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.IsEnabled())
	assert.Equal(t, defaultMetricsPrefix, cfg.Prefix)

	cfg = ObservabilityMetricsConfig{Enabled: true, StatsdAddress: " 127.0.0.1:8125 ", Prefix: "svc"}
	cfg.Sanitize()
	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, "127.0.0.1:8125", cfg.StatsdAddress)
	assert.Equal(t, "svc", cfg.Prefix)
}

func TestDBConfig_Sanitize(t *testing.T) {
	cfg := DBConfig{MaxOpenConns: 4, MaxIdleConns: 10}
	cfg.Sanitize()
	assert.Equal(t, 4, cfg.MaxOpenConns)
	assert.Equal(t, 4, cfg.MaxIdleConns)
	assert.Equal(t, defaultConnMaxLifetime, cfg.ConnMaxLifetime)
	assert.Equal(t, "disable", cfg.SSLMode)

	cfg = DBConfig{MaxOpenConns: -1, SSLMode: " require "}
	cfg.Sanitize()
	assert.Equal(t, defaultMaxOpenConns, cfg.MaxOpenConns)
	assert.Equal(t, defaultMaxIdleConns, cfg.MaxIdleConns)
	assert.Equal(t, "require", cfg.SSLMode)
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: 5433, User: "u", Password: "p@ss/word", Name: "duogate", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p%40ss%2Fword@db:5433/duogate?sslmode=require", cfg.DSN())
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	cfg := HTTPConfig{ReadTimeout: -time.Second, WriteTimeout: time.Minute}
	cfg.Sanitize()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.ReadHeaderTimeout)
	assert.Equal(t, 2*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}
