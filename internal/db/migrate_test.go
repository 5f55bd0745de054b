package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var version int
	require.NoError(t, db.QueryRow(`PRAGMA user_version`).Scan(&version))
	assert.Equal(t, SchemaVersion(), version)
}

func TestMigrate_RejectsNewerSchema(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion()+1))
	require.NoError(t, err)

	err = Migrate(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer")
}

func TestMigrate_CreatesSchema(t *testing.T) {
	db := openTestDB(t)

	for _, obj := range []struct{ kind, name string }{
		{"table", "kv_entries"},
		{"index", "idx_kv_entries_updated"},
	} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type=? AND name=?`, obj.kind, obj.name).Scan(&name)
		require.NoError(t, err, "%s %s should exist", obj.kind, obj.name)
		assert.Equal(t, obj.name, name)
	}
}

func TestOpenDB_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "kanbantree.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`INSERT INTO kv_entries (key, value, updated_at) VALUES ('k', 'v', 'now')`)
	require.NoError(t, err)
}

func TestOpenDB_FileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kanbantree.db")

	first, err := OpenDB(path)
	require.NoError(t, err)
	_, err = first.Exec(`INSERT INTO kv_entries (key, value, updated_at) VALUES ('k', 'v', 'now')`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	var v string
	require.NoError(t, second.QueryRow(`SELECT value FROM kv_entries WHERE key='k'`).Scan(&v))
	assert.Equal(t, "v", v)
}
