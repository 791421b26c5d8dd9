// Package testutil provides database and Redis helpers for the job dispatch test suites.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/target/jobdispatch/internal/migrate"
)

// TestDBConfig holds configuration for test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig reads TEST_DB_* and falls back to the local docker-compose database
// on port 55432.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     getEnvOrDefault("TEST_DB_HOST", "localhost"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "55432"),
		User:     getEnvOrDefault("TEST_DB_USER", "jobdispatch"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "jobdispatch"),
		DBName:   getEnvOrDefault("TEST_DB_NAME", "jobdispatch"),
	}
}

// DSN renders the config as a pgx URL. A non-empty searchPath scopes the session to that schema.
func (c TestDBConfig) DSN(searchPath string) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", getEnvOrDefault("DB_SSL_MODE", "disable"))
	if searchPath != "" {
		q.Set("search_path", searchPath)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// TestingTB is the subset of testing.TB the helpers need.
type TestingTB interface {
	Helper()
	Skip(args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// cleanupTables lists tables in FK-safe delete order.
var cleanupTables = []string{
	"job_dispatches",
	"audit_api_logs",
	"audit_error_log_entries",
	"audit_requests",
	"ref_sequences",
}

// WithAutoDB runs fn against a migrated test database. With TEST_DB_EPHEMERAL set, each call
// gets its own schema which is dropped afterwards; otherwise the shared database is emptied
// before and after fn. The test is skipped when no database is reachable unless
// TEST_REQUIRE_DB or TEST_REQUIRE_INFRA is set.
func WithAutoDB(t testing.TB, fn func(*sql.DB)) {
	t.Helper()
	cfg := DefaultTestDBConfig()
	admin := openAndPing(t, cfg.DSN(""))
	defer closeAndLog(t, "admin db", admin)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !envBool("TEST_DB_EPHEMERAL") {
		if err := runMigrations(ctx, admin); err != nil {
			t.Fatal("run migrations:", err)
		}
		truncate(t, admin)
		defer truncate(t, admin)
		fn(admin)
		return
	}

	schema := schemaName()
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema %s: %v", schema, err)
	}
	defer func() {
		if _, err := admin.ExecContext(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
	}()

	db := openAndPing(t, cfg.DSN(schema+",public"))
	defer closeAndLog(t, "schema db", db)
	if err := runMigrations(ctx, db); err != nil {
		t.Fatal("run migrations in ephemeral schema:", err)
	}
	t.Logf("using ephemeral schema %s", schema)
	fn(db)
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := migrate.Run(ctx, db)
	return err
}

func openAndPing(t TestingTB, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		skipOrFail(t, requireDB(), "test database not available:", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		closeAndLog(t, "test db", db)
		skipOrFail(t, requireDB(), "test database not available:", err)
		return nil
	}
	return db
}

func truncate(t TestingTB, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, table := range cleanupTables {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("clean up table %s: %v", table, err)
		}
	}
}

func skipOrFail(t TestingTB, required bool, args ...any) {
	t.Helper()
	if required {
		t.Fatal(args...)
	}
	t.Skip(args...)
}

func schemaName() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return "t_" + hex.EncodeToString(b)
}

func closeAndLog(t TestingTB, name string, closer interface{ Close() error }) {
	if err := closer.Close(); err != nil {
		t.Logf("warning: failed to close %s: %v", name, err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envBool parses common truthy values from env vars.
func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func requireDB() bool { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
