package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JesseBremer/journal-mate/internal/config"
)

func TestRebind(t *testing.T) {
	q := "UPDATE t SET a = ?, b = ? WHERE id = ? AND user_id = ?"

	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3 AND user_id = $4", Postgres.Rebind(q))
	assert.Equal(t, q, SQLite.Rebind(q))
}

func TestConnectAndMigrate_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	database, dialect, err := Connect(config.DatabaseConfig{Driver: "sqlite3", Path: path})
	require.NoError(t, err)
	defer database.Close()
	assert.Equal(t, SQLite, dialect)

	require.NoError(t, Migrate(database, dialect))
	// idempotent
	require.NoError(t, Migrate(database, dialect))

	var fk int
	require.NoError(t, database.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, _, err := Connect(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
