package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/duogate/config"
)

// Runtime owns the process-wide connections. Close releases them in reverse order.
type Runtime struct {
	Infra     Infrastructure
	Telemetry *Telemetry
	logger    *slog.Logger
}

// OpenRuntime connects Postgres and Redis, creates the data encryptor and the
// metrics sinks, and runs migrations when configured to.
func OpenRuntime(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{logger: logger}

	enc, err := CreateEncryptor(cfg.DataEncryptionKey, cfg.IsDev, logger)
	if err != nil {
		return nil, err
	}
	rt.Infra.Encryptor = enc

	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}
	if rt.Infra.DB, err = ConnectDB(ctx, dbCfg); err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if rt.Infra.Redis, err = ConnectRedis(ctx, dbCfg); err != nil {
		return nil, errors.Join(fmt.Errorf("connect redis: %w", err), rt.Close())
	}

	if cfg.Postgres.RunMigrationsOnStart {
		if err = RunMigrations(ctx, rt.Infra.DB, logger); err != nil {
			return nil, errors.Join(err, rt.Close())
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	rt.Telemetry, err = NewTelemetry(TelemetryOptions{Config: cfg.Observability, Logger: logger})
	if err != nil {
		return nil, errors.Join(err, rt.Close())
	}
	rt.Infra.Metrics = rt.Telemetry.Sink

	return rt, nil
}

// Close releases every opened connection and joins their errors.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if err := r.Telemetry.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close statsd: %w", err))
	}
	if r.Infra.Redis != nil {
		if err := r.Infra.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if r.Infra.DB != nil {
		if err := r.Infra.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
