package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, store.Close())
	}()

	// Verify the store is usable by pinging the database.
	require.NoError(t, store.db.Ping())

	// Reopening runs the idempotent schema again.
	again, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestSQLiteStoreRuns(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	last, err := store.LastSuccess(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	base := time.Date(2026, 3, 2, 1, 0, 5, 0, time.UTC)
	runs := []Run{
		{ID: "a", StartedAt: base, FinishedAt: base.Add(3 * time.Second), Bucket: "2026-03-02 10:00", Status: RunOK, Items: 23, NewNames: 20},
		{ID: "b", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Second), Bucket: "2026-03-02 11:00", Status: RunFetchError, Error: "status 503"},
	}
	for _, r := range runs {
		require.NoError(t, store.RecordRun(ctx, r))
	}

	got, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID, "newest first")
	assert.Equal(t, "status 503", got[0].Error)
	assert.True(t, got[1].StartedAt.Equal(base))

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	last, err = store.LastSuccess(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "a", last.ID)
	assert.Equal(t, 23, last.Items)
	assert.Equal(t, 20, last.NewNames)
}
