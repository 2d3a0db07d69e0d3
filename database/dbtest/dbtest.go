// database/dbtest/dbtest.go

// Package dbtest opens throwaway in-memory catalogs for tests of packages that
// sit above the database layer.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/gewnthar/cragbook/database"
)

// NewStore returns a Store over a fresh in-memory SQLite database with the
// schema applied. The database is closed when the test ends.
func NewStore(t testing.TB) *database.Store {
	t.Helper()
	db, err := sql.Open(database.DialectSQLite, ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.EnsureSchema(context.Background(), db, database.DialectSQLite))
	return database.NewStore(db)
}
