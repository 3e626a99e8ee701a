package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/driftboat/migrations"
	"github.com/pkordes/driftboat/testutil"
)

// TestMain applies all pending Postgres migrations to the test database so
// individual tests never need to think about schema state. SQLite tests
// migrate their own in-memory database and always run.
func TestMain(m *testing.M) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		// No test DB configured; Postgres tests skip themselves.
		os.Exit(m.Run())
	}

	// goose needs database/sql, not a pgx pool.
	db := testutil.MustOpenSQLDB(os.Getenv("TEST_DATABASE_URL"))
	defer db.Close()

	if err := migrations.Up(context.Background(), db, migrations.Postgres); err != nil {
		log.Fatalf("TestMain: run migrations: %v", err)
	}

	os.Exit(m.Run())
}
