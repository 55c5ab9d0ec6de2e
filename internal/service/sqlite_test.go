package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Shivanand-hulikatti/event-checkin/internal/database"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
	"github.com/stretchr/testify/require"
)

func openSQLiteStore(t *testing.T) repository.Store {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "checkin.db"))
	require.NoError(t, err)
	store := repository.NewSQLiteStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
