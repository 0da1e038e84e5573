// Command duogate-admin runs operator tasks against the duogate database and Duo tenants.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/target/duogate/config"
	"github.com/target/duogate/internal/bootstrap"
)

const defaultCommandTimeout = 5 * time.Minute

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

type command struct {
	name        string
	description string
	run         func(cmdCtx *commandContext, args []string) error
}

// commands is kept in alphabetical order; usage prints it as is.
var commands = []command{
	{"duo-health", "Build a Duo client for a user or organization and run its health check", runDuoHealth},
	{"migrate", "Run database migrations", runMigrations},
	{"migrate-status", "List embedded migrations and whether they are applied", runMigrationStatus},
	{"seed", "Load users, organizations and Duo configuration from a YAML fixture", runSeed},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr)) //nolint:forbidigo // exit status is the CLI contract
}

// run dispatches args[0] and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_ = printUsage(stderr)
		return 2
	}
	cmd, ok := lookupCommand(args[0])
	if !ok {
		_ = writef(stderr, "unknown command %q\n\n", args[0])
		_ = printUsage(stderr)
		return 2
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		_ = writef(stderr, "load config: %v\n", err)
		return 1
	}
	logger := bootstrap.InitLogger(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{Ctx: ctx, Logger: logger, Config: cfg, Out: stdout}
	if err := cmd.run(cmdCtx, args[1:]); err != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmd.name, "error", err)
		return 1
	}
	return 0
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: duogate-admin <command> [flags]\n\nAvailable commands:\n"); err != nil {
		return err
	}
	for _, c := range commands {
		if err := writef(w, "  %-16s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
