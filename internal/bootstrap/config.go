package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/target/duogate/config"
)

// envFileVar names an alternative dotenv file. The default is ".env".
const envFileVar = "DUOGATE_ENV_FILE"

// InitLogger builds the process logger from cfg and installs it as the slog default.
func InitLogger(cfg *config.AppConfig) *slog.Logger {
	logger := newLogger(os.Stdout, cfg)
	slog.SetDefault(logger)
	return logger
}

// newLogger writes text in development and JSON otherwise. Debug level adds source positions.
func newLogger(w io.Writer, cfg *config.AppConfig) *slog.Logger {
	if cfg == nil {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	level := cfg.Observability.SlogLevel()
	opts := &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}
	if cfg.IsDev {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts)).With("service", "duogate")
}

// LoadConfig reads an optional dotenv file, then parses, sanitizes and validates the environment.
// Variables already set in the environment win over the file.
func LoadConfig() (config.AppConfig, error) {
	file := ".env"
	if custom := os.Getenv(envFileVar); custom != "" {
		file = custom
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.AppConfig{}, fmt.Errorf("load %s: %w", file, err)
	}
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (config.AppConfig, error) {
	var cfg config.AppConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
