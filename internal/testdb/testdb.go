package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/platform/migrations"
)

// DatabaseURL returns the PostgreSQL URL for integration tests, or "".
func DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("SCRY_TEST_DB_URL")
}

// ShouldSkipDatabaseTest reports whether PostgreSQL integration tests should be skipped.
func ShouldSkipDatabaseTest() bool {
	return DatabaseURL() == ""
}

// OpenSQLite creates a migrated SQLite database private to t.
// The database is closed when the test finishes.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scry-test.db")
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "failed to open sqlite database")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	migrate(t, db, migrations.DriverSQLite)
	return db
}

// OpenPostgres connects to the integration database and applies migrations.
// The test is skipped when no database URL is configured.
func OpenPostgres(t testing.TB) *sql.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", DatabaseURL())
	require.NoError(t, err, "failed to open postgres database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping postgres database")

	migrate(t, db, migrations.DriverPostgres)
	return db
}

func migrate(t testing.TB, db *sql.DB, driver string) {
	t.Helper()
	quiet, _ := logger.NewTestLogger()
	require.NoError(t, migrations.Up(context.Background(), db, driver, quiet), "failed to run migrations")
}

// WithTx runs fn inside a transaction that is always rolled back afterwards,
// so fn can modify the database without affecting other tests.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
