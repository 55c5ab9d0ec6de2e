package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Shivanand-hulikatti/event-checkin/internal/database/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := OpenSQLite(context.Background(), "  ")
	require.Error(t, err)
}

func TestOpenSQLiteAppliesSchemaIdempotently(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "checkin.db")
	ctx := context.Background()

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var tables int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('events', 'participants')`,
	).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestConfigDSN(t *testing.T) {
	t.Parallel()

	cfg := Config{Host: "db", Port: "5433", User: "u", Password: "p", DBName: "checkin", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=checkin sslmode=require", cfg.DSN())
}

func TestMigrationFilesAreEmbedded(t *testing.T) {
	t.Parallel()

	pg, err := sqlFiles(migrations.Postgres, "postgres")
	require.NoError(t, err)
	assert.Equal(t, []string{"postgres/0001_init.sql"}, pg)

	lite, err := sqlFiles(migrations.SQLite, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, []string{"sqlite/0001_init.sql"}, lite)
}
