// Package testutil provides shared helpers for tests that need Postgres, Redis or a fixed clock.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	env "github.com/caarlos0/env/v11"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/target/duogate/config"
	"github.com/target/duogate/internal/migrate"
)

// localTestDBPort is the docker-compose test profile port. CI sets TEST_DB_PORT=5432.
const localTestDBPort = 55432

// TestingTB is the subset of testing.TB the helpers need.
type TestingTB interface {
	Helper()
	Cleanup(func())
	Skip(args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// DBConfig reads the test database settings from TEST_DB_* variables.
func DBConfig() config.DBConfig {
	var cfg config.DBConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TEST_DB_"}); err != nil {
		cfg = config.DBConfig{Host: "localhost", User: "duogate", Password: "duogate", Name: "duogate"}
	}
	if os.Getenv("TEST_DB_PORT") == "" {
		cfg.Port = localTestDBPort
	}
	cfg.Sanitize()
	return cfg
}

// SkipIfNoTestDB skips the test when the test database does not answer a ping.
// TEST_REQUIRE_DB turns the skip into a failure.
func SkipIfNoTestDB(t TestingTB) {
	t.Helper()
	if err := pingDB(DBConfig().DSN()); err != nil {
		if required, _ := strconv.ParseBool(os.Getenv("TEST_REQUIRE_DB")); required {
			t.Fatal("test database not available:", err)
		}
		t.Skip("test database not available:", err)
	}
}

func pingDB(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// WithAutoDB runs fn against a throwaway schema with migrations applied.
// The schema is dropped when the test completes.
func WithAutoDB(t TestingTB, fn func(*sql.DB)) {
	t.Helper()
	SkipIfNoTestDB(t)

	dsn := DBConfig().DSN()
	admin, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatal("open admin database:", err)
	}
	t.Cleanup(func() { _ = admin.Close() })

	schema := schemaName()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema %s: %v", schema, err)
	}

	db, err := sql.Open("pgx", withSearchPath(dsn, schema))
	if err != nil {
		t.Fatal("open schema database:", err)
	}
	// Cleanups run last-in first-out: the schema is dropped before admin closes.
	t.Cleanup(func() {
		_ = db.Close()
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dropCancel()
		if _, err := admin.ExecContext(dropCtx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
	})

	if err := migrate.Run(ctx, db); err != nil {
		t.Fatal("run migrations:", err)
	}
	fn(db)
}

func withSearchPath(dsn, schema string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String()
}

func schemaName() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return "t_" + hex.EncodeToString(b)
}

// SetupMiniRedis starts an in-process Redis and returns a client connected to it.
// Both are closed when the test completes.
func SetupMiniRedis(t TestingTB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

// TestTime is the fixed instant most tests start their clocks at.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// Clock is a settable clock safe for concurrent use. Pass c.Now where a
// func() time.Time is expected.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
