package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"tasknest/internal/apperr"
	"tasknest/internal/auth"
	"tasknest/internal/db"
	"tasknest/internal/model"
	"tasknest/internal/prefs"
	"tasknest/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *db.Store) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	sqlDB, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	preferences, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.json"), log)
	require.NoError(t, err)
	t.Cleanup(preferences.Close)

	store := db.NewStore(sqlDB)
	return &App{
		Tasks: repo.NewTaskRepo(store, log),
		Auth:  auth.NewService(store, nil, log),
		Prefs: preferences,
		Log:   log,
	}, store
}

func TestOwnedTaskRequiresSession(t *testing.T) {
	a, _ := newTestApp(t)

	_, err := a.ownedTask(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrAuth)
}

func TestOwnedTaskHidesOtherUsersTasks(t *testing.T) {
	a, store := newTestApp(t)
	ctx := context.Background()

	aliceID, err := store.InsertUser(ctx, "alice", "Alice A", "hash", 1)
	require.NoError(t, err)
	bobID, err := store.InsertUser(ctx, "bob", "Bob B", "hash", 1)
	require.NoError(t, err)

	mine, err := a.Tasks.AddTask(ctx, model.Task{UserID: aliceID, Title: "mine"})
	require.NoError(t, err)
	theirs, err := a.Tasks.AddTask(ctx, model.Task{UserID: bobID, Title: "theirs"})
	require.NoError(t, err)

	a.Prefs.SaveUserID(aliceID)

	task, err := a.ownedTask(ctx, mine)
	require.NoError(t, err)
	assert.Equal(t, mine, task.ID)

	// another user's task reads as absent, same as a missing id
	_, err = a.ownedTask(ctx, theirs)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = a.ownedTask(ctx, 99999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// bob's task itself is untouched
	got, err := a.Tasks.TaskByID(ctx, theirs)
	require.NoError(t, err)
	assert.Equal(t, "theirs", got.Title)
}
