package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/target/duogate/internal/bootstrap"
	"github.com/target/duogate/internal/domain/twofactor"
)

type healthOptions struct {
	UserID  string
	OrgID   string
	Timeout time.Duration
}

func parseHealthFlags(args []string) (healthOptions, error) {
	fs := flag.NewFlagSet("duo-health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := healthOptions{Timeout: 30 * time.Second}
	fs.StringVar(&opts.UserID, "user", "", "User ID whose Duo configuration is checked")
	fs.StringVar(&opts.OrgID, "org", "", "Organization ID whose Duo policy is checked")
	fs.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Maximum duration for the health check")

	if err := fs.Parse(args); err != nil {
		return healthOptions{}, err
	}
	opts.UserID = strings.TrimSpace(opts.UserID)
	opts.OrgID = strings.TrimSpace(opts.OrgID)
	if (opts.UserID == "") == (opts.OrgID == "") {
		return healthOptions{}, errors.New("exactly one of --user or --org is required")
	}
	if opts.Timeout <= 0 {
		return healthOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runDuoHealth(cmdCtx *commandContext, args []string) error {
	opts, err := parseHealthFlags(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	rt, err := bootstrap.OpenRuntime(ctx, &cmdCtx.Config, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("runtime close failed", "error", closeErr)
		}
	}()

	svcs, err := bootstrap.NewTwoFactorServices(bootstrap.TwoFactorDeps{
		Config: &cmdCtx.Config,
		Infra:  rt.Infra,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	subject, reason, err := checkHealth(ctx, svcs, opts)
	if err != nil {
		return err
	}
	return printHealth(cmdCtx.Out, subject, reason, time.Since(start))
}

func checkHealth(ctx context.Context, svcs *bootstrap.TwoFactorServices, opts healthOptions) (string, twofactor.Reason, error) {
	if opts.UserID != "" {
		user, err := svcs.Users.GetByID(ctx, opts.UserID)
		if err != nil {
			return "", "", fmt.Errorf("load user: %w", err)
		}
		reason, err := svcs.User.CheckHealth(ctx, user)
		return "user " + user.ID, reason, err
	}
	org, err := svcs.Organizations.GetByID(ctx, opts.OrgID)
	if err != nil {
		return "", "", fmt.Errorf("load organization: %w", err)
	}
	reason, err := svcs.Organization.CheckHealth(ctx, org)
	return "organization " + org.ID, reason, err
}

func printHealth(w io.Writer, subject string, reason twofactor.Reason, took time.Duration) error {
	if reason == twofactor.ReasonNone {
		return writef(w, "%s: healthy (%s)\n", subject, took.Round(time.Millisecond))
	}
	return writef(w, "%s: unavailable, %s (%s)\n", subject, reason, took.Round(time.Millisecond))
}
