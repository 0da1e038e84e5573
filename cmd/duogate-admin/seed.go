package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/target/duogate/internal/bootstrap"
	"github.com/target/duogate/internal/devseed"
)

type seedOptions struct {
	File        string
	Timeout     time.Duration
	AllowRemote bool
}

func parseSeedFlags(args []string) (seedOptions, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := seedOptions{Timeout: defaultCommandTimeout}
	fs.StringVar(&opts.File, "file", "", "Path to the YAML fixture (required)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration to wait for seeding to complete")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")

	if err := fs.Parse(args); err != nil {
		return seedOptions{}, err
	}
	if strings.TrimSpace(opts.File) == "" {
		return seedOptions{}, errors.New("--file is required")
	}
	if opts.Timeout <= 0 {
		return seedOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseSeedFlags(args)
	if err != nil {
		return err
	}
	if guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote, "seed development data"); guardErr != nil {
		return guardErr
	}

	fixture, err := devseed.LoadFile(opts.File)
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

	if fixture.Session != nil && fixture.Session.TTL <= 0 {
		fixture.Session.TTL = cmdCtx.Config.Session.TTL
	}
	report, err := devseed.Run(ctx, devseed.Services{
		Users:         svcs.Users,
		Organizations: svcs.Organizations,
		Sessions:      svcs.Sessions,
	}, fixture, cmdCtx.Logger)
	if err != nil {
		return err
	}
	return printSeedReport(cmdCtx.Out, report)
}

func printSeedReport(w io.Writer, rep *devseed.Report) error {
	for _, email := range sortedKeys(rep.UserIDs) {
		if err := writef(w, "user          %s  %s\n", rep.UserIDs[email], email); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(rep.OrganizationIDs) {
		if err := writef(w, "organization  %s  %s\n", rep.OrganizationIDs[name], name); err != nil {
			return err
		}
	}
	if rep.Session != nil {
		if err := writef(w, "session       %s  expires %s\n",
			rep.Session.ID, rep.Session.ExpiresAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func guardRemoteHost(cmdCtx *commandContext, allow bool, action string) error {
	host := cmdCtx.Config.Postgres.Host
	if !isLikelyRemoteHost(host) {
		return nil
	}
	if !allow {
		return fmt.Errorf(
			"refusing to run against potentially remote database host %q; re-run with --allow-remote if this is intentional",
			host,
		)
	}
	return requireRemoteHostConfirmation(os.Stdin, os.Stderr, action, host)
}

func isLikelyRemoteHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" || h == "localhost" || strings.HasSuffix(h, ".local") {
		return false
	}
	if ip := net.ParseIP(h); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}

func requireRemoteHostConfirmation(in io.Reader, out io.Writer, action, host string) error {
	if err := writef(out,
		"\nWARNING: database host %q does not look like a local address.\nThis operation will %s.\n"+
			"Type %q to continue or press enter to abort: ", host, action, host); err != nil {
		return fmt.Errorf("print remote host prompt: %w", err)
	}
	resp, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if strings.TrimSpace(resp) != host {
		return errors.New("aborted by user")
	}
	return nil
}
