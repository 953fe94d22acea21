package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/campusware/regpos/internal/database"
)

func testDB(t *testing.T) *RunRepo {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRunRepo(db)
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := testDB(t)

	run := Run{ID: uuid.NewString(), Kind: "sync students", StartedAt: time.Now().UTC()}
	require.NoError(t, repo.Insert(ctx, run))

	require.NoError(t, repo.AddEvent(ctx, run.ID, "info", "pulled 10 students records"))
	require.NoError(t, repo.AddEvent(ctx, run.ID, "warn", "person 500: lookup failed"))
	require.NoError(t, repo.Finish(ctx, run.ID, "created 2, updated 1, up to date 7, failed 0"))

	runs, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "sync students", runs[0].Kind)
	require.NotNil(t, runs[0].FinishedAt)
	require.NotNil(t, runs[0].Summary)
	require.Contains(t, *runs[0].Summary, "created 2")

	events, err := repo.Events(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "info", events[0].Level)
	require.Equal(t, "warn", events[1].Level)
}

func TestRunListOrderAndLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := testDB(t)

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := Run{ID: uuid.NewString(), Kind: "deletion sweep", StartedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repo.Insert(ctx, run))
	}

	runs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
}

func TestEventsCascadeOnRunDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewRunRepo(db)

	run := Run{ID: uuid.NewString(), Kind: "sync facstaff", StartedAt: time.Now().UTC()}
	require.NoError(t, repo.Insert(ctx, run))
	require.NoError(t, repo.AddEvent(ctx, run.ID, "info", "hello"))

	_, err = db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", run.ID)
	require.NoError(t, err)

	events, err := repo.Events(ctx, run.ID)
	require.NoError(t, err)
	require.Empty(t, events)
}
