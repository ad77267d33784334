package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "a", "b", "bookapi.db")

	require.NoError(t, EnsureParentDir(path))
	info, err := os.Stat(filepath.Join(base, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, EnsureParentDir(path), "existing directory is fine")
	require.NoError(t, EnsureParentDir("bookapi.db"))
}

func TestEnsureParentDir_Error(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := EnsureParentDir(filepath.Join(blocker, "sub", "bookapi.db"))
	require.ErrorContains(t, err, "mkdir")
}

func TestSQLiteFilePath(t *testing.T) {
	assert.Equal(t, "data/bookapi.db", SQLiteFilePath("data/bookapi.db"))
	assert.Empty(t, SQLiteFilePath(":memory:"))
	assert.Empty(t, SQLiteFilePath("file:test?mode=memory&cache=shared"))
	assert.Empty(t, SQLiteFilePath(""))
}
