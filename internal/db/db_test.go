package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenForTesting(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='households'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "households", tableName)
}

func TestOpenForTesting_Isolated(t *testing.T) {
	first, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })

	second, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	_, err = first.Exec(`INSERT INTO households (join_code, name, document) VALUES ('AAAAAA', 'a', '{}')`)
	require.NoError(t, err)

	var count int
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM households").Scan(&count))
	assert.Zero(t, count)
}

func TestOpenFile_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cartshare.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO households (join_code, name, document) VALUES ('AAAAAA', 'a', '{}')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must not re-apply the schema or lose rows.
	db, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM households").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRunMigrations_RecordsVersion(t *testing.T) {
	db, err := sql.Open("sqlite", "file:migration_version?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	require.NoError(t, runMigrations(db))

	var version int
	require.NoError(t, db.QueryRow("SELECT version FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}
