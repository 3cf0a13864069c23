package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"tasknest/internal/apperr"
	"tasknest/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *db.Store) {
	t.Helper()

	sqlDB, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := db.NewStore(sqlDB)
	return NewService(store, nil, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestHashPasswordIsLowercaseHexSHA256(t *testing.T) {
	// sha256("secret1")
	assert.Equal(t,
		"5b11618c2e44027877d0cd0921ed166b9f176f50587fc91e7534dd2946db77d6",
		HashPassword("secret1"))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		display  string
		password string
		confirm  string
	}{
		{"short username", "al", "Alice", "secret1", "secret1"},
		{"bad username characters", "al ice!", "Alice", "secret1", "secret1"},
		{"blank display name", "alice", "   ", "secret1", "secret1"},
		{"short password", "alice", "Alice", "12345", "12345"},
		{"password mismatch", "alice", "Alice", "secret1", "secret2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.display, tc.password, tc.confirm)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestRegisterThenDuplicateConflicts(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "Alice A", "secret1", "secret1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice A", user.DisplayName)
	assert.NotZero(t, user.CreatedAt)

	_, err = svc.Register(ctx, "alice", "Impostor", "secret2", "secret2")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	var users int
	require.NoError(t, store.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&users))
	assert.Equal(t, 1, users, "conflicting registration must leave the store unchanged")
}

func TestLoginMatchesRegistration(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "Alice A", "secret1", "secret1")
	require.NoError(t, err)

	user, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "Alice A", user.DisplayName)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Alice A", "secret1", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "", "secret1")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Login(ctx, "alice", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, apperr.ErrAuth)
	assert.Contains(t, err.Error(), "user not found")

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperr.ErrAuth)
	assert.Contains(t, err.Error(), "invalid password")
}

func TestUserByIDStripsPasswordHash(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "Alice A", "secret1", "secret1")
	require.NoError(t, err)

	user, err := svc.UserByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered, user)

	_, err = svc.UserByID(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
