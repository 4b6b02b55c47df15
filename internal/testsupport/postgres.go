package testsupport

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"tickerpulse/internal/adapters/postgres"
)

// PostgresTestHelper manages a database connection for integration tests.
// Tables are truncated on cleanup so tests stay independent.
type PostgresTestHelper struct {
	db *sqlx.DB
}

// NewTestPostgres connects to the test database named by TEST_POSTGRES_DSN
// (loaded from .env.test when present) and ensures the schema exists.
// The test is skipped when no DSN is configured.
func NewTestPostgres(t *testing.T) *PostgresTestHelper {
	t.Helper()

	_ = godotenv.Load(".env.test")
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set, skipping integration test")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to connect to test postgres: %v", err)
	}

	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		_ = db.Close()
		t.Fatalf("failed to ensure schema: %v", err)
	}

	helper := &PostgresTestHelper{db: db}
	t.Cleanup(func() {
		helper.Truncate(t)
		_ = db.Close()
	})
	return helper
}

// DB returns the underlying database handle
func (h *PostgresTestHelper) DB() *sqlx.DB {
	return h.db
}

// Truncate clears all tables touched by tests
func (h *PostgresTestHelper) Truncate(t *testing.T) {
	t.Helper()
	for _, table := range []string{"posts", "sentiment_buckets"} {
		if _, err := h.db.Exec("TRUNCATE TABLE " + table); err != nil {
			t.Logf("failed to truncate %s: %v", table, err)
		}
	}
}
