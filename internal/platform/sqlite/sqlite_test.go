package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("applies the schema and pragmas", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "test.db"), `CREATE TABLE IF NOT EXISTS things (id TEXT PRIMARY KEY)`)
		require.NoError(t, err)
		defer db.Close()

		_, err = db.Exec(`INSERT INTO things (id) VALUES ('a')`)
		require.NoError(t, err)

		var mode string
		require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
		assert.Equal(t, "wal", mode)
	})

	t.Run("reopening an existing file is idempotent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.db")
		schema := `CREATE TABLE IF NOT EXISTS things (id TEXT PRIMARY KEY)`

		db, err := Open(path, schema)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO things (id) VALUES ('a')`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db, err = Open(path, schema)
		require.NoError(t, err)
		defer db.Close()

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM things`).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("rejects a broken schema", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "test.db"), `CREATE GARBAGE`)
		assert.Error(t, err)
	})
}
