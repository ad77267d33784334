package repomanager

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/bookapi/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestSQLite_RunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open(DriverSQLite, filepath.Join(t.TempDir(), "bookapi.db"))
	require.NoError(t, err)
	defer db.Close()

	m := &SQLiteRepositoryManager{}
	require.NoError(t, m.RunMigrations(ctx, db))
	require.NoError(t, m.RunMigrations(ctx, db), "second run must be a no-op")

	assert.True(t, tableExists(t, db, "users"))
	assert.True(t, tableExists(t, db, "goose_db_version"))

	assert.IsType(t, &users.SQLiteRepository{}, m.Users(db))
}
