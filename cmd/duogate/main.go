// Command duogate serves the Duo second-factor endpoints.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/target/duogate/config"
	"github.com/target/duogate/internal/bootstrap"
)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // fatal startup error
	}
	logger := bootstrap.InitLogger(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = serve(ctx, &cfg, logger)
	stop()
	if err != nil {
		logger.Error("duogate stopped", "error", err)
		os.Exit(1) //nolint:forbidigo // fatal runtime error
	}
}

// serve wires the runtime and blocks until ctx is canceled or the listener fails.
func serve(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (err error) {
	logger.InfoContext(ctx, "starting duogate", startupAttrs(cfg)...)

	rt, err := bootstrap.OpenRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, rt.Close()) }()

	svcs, err := bootstrap.NewTwoFactorServices(bootstrap.TwoFactorDeps{Config: cfg, Infra: rt.Infra, Logger: logger})
	if err != nil {
		return err
	}
	server, err := bootstrap.NewHTTPServer(bootstrap.HTTPServerConfig{
		Config:   cfg,
		Services: svcs,
		Observe:  bootstrap.HTTPObservability{Logger: logger, Gatherer: rt.Telemetry.Gatherer},
	})
	if err != nil {
		return err
	}
	return bootstrap.ServeHTTP(ctx, server, cfg.HTTP.ShutdownTimeout, logger)
}

func startupAttrs(cfg *config.AppConfig) []any {
	attrs := []any{
		"dev", cfg.IsDev,
		"addr", cfg.HTTP.Addr,
		"db", cfg.Postgres.Host + "/" + cfg.Postgres.Name,
		"vault_url", cfg.TwoFactor.VaultURL,
		"replay_guard", cfg.TwoFactor.ReplayGuardEnabled,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		attrs = append(attrs, "version", info.Main.Version, "go", info.GoVersion)
	}
	return attrs
}
