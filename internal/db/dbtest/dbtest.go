// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-fixtures/internal/db"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// SQLiteDSN returns a DSN for a file-backed database at path. An in-memory
// database is not used because every pooled connection would get its own copy.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_txlock=immediate&_busy_timeout=10000&_foreign_keys=on", path)
}

// Open creates a migrated SQLite database in the test's temp dir. It is closed
// when the test ends.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Connect(db.DriverSQLite, SQLiteDSN(filepath.Join(t.TempDir(), "fixtures.db")), 5*time.Second)
	require.NoError(t, err, "Failed to open test DB")
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")
	return database
}
