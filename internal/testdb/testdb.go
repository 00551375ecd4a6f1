// Package testdb provides helpers for integration tests that run against a
// real PostgreSQL instance. Tests that use it skip themselves when no test
// database is configured, so the default unit test run stays dependency-free.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/keepsake-app/keepsake-api/internal/platform/postgres/migrations"
)

// connectTimeout bounds how long a test waits for the database to answer.
const connectTimeout = 5 * time.Second

// URL returns the test database URL, checking DATABASE_URL first and
// KEEPSAKE_TEST_DB_URL as a fallback. Empty means integration tests
// should be skipped.
func URL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("KEEPSAKE_TEST_DB_URL")
}

// Connect opens a connection to the test database and applies the embedded
// migrations. It skips the calling test when no test database is configured.
// The connection is closed automatically when the test finishes.
func Connect(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := URL()
	if dbURL == "" {
		t.Skip("no test database configured, set DATABASE_URL to run integration tests")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database connection")
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, "."), "failed to apply migrations")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// can write freely without leaking state into each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", rbErr)
		}
	}()

	fn(t, tx)
}
