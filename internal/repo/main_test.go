package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/trip-planner/backend/migrations"
	"github.com/pkordes/trip-planner/backend/testutil"
)

// TestMain applies all pending migrations to the test database before any
// Postgres-backed test runs. Without TEST_DATABASE_URL the Postgres tests
// skip themselves and the in-process backends still run.
func TestMain(m *testing.M) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		os.Exit(m.Run())
	}

	// goose needs a *sql.DB rather than a pgx pool.
	db := testutil.MustOpenSQLDB(os.Getenv("TEST_DATABASE_URL"))
	defer db.Close()

	if _, err := migrations.Up(context.Background(), db); err != nil {
		log.Fatalf("TestMain: %v", err)
	}

	os.Exit(m.Run())
}
