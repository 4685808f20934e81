package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/database"
	"user-service/internal/domain"
	"user-service/internal/repository"
)

func setupTestRepo(t *testing.T) (*database.Pool, repository.UserRepository) {
	t.Helper()
	pool, err := database.Open(context.Background(), database.Options{URL: "sqlite://:memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewUserRepository(pool)
	require.NoError(t, repo.Init(context.Background()))
	return pool, repo
}

func TestCreateAndGetUser(t *testing.T) {
	_, repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "test_user_1", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.Username("test_user_1"), created.Username)
	assert.Equal(t, domain.Password("password123"), created.Password)
	_, err = domain.ParseUserID(created.ID.String())
	require.NoError(t, err)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *byID)

	byName, err := repo.GetByUsername(ctx, "test_user_1")
	require.NoError(t, err)
	assert.Equal(t, *created, *byName)
}

func TestCreateGeneratesDistinctIDs(t *testing.T) {
	_, repo := setupTestRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, "user_a", "pass_a")
	require.NoError(t, err)
	b, err := repo.Create(ctx, "user_b", "pass_b")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateDuplicateUsername(t *testing.T) {
	_, repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", "p1")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "alice", "p2")
	var storageErr *repository.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "insert user", storageErr.Op)
}

func TestGetMissingUser(t *testing.T) {
	_, repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, domain.NewUserID())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetByUsernameIsExactMatch(t *testing.T) {
	_, repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "Alice", "p1")
	require.NoError(t, err)

	_, err = repo.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByUsername(ctx, "Ali%")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListUsers(t *testing.T) {
	_, repo := setupTestRepo(t)
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	var ids []domain.UserID
	for _, name := range []domain.Username{"u1", "u2", "u3"} {
		u, err := repo.Create(ctx, name, "pw")
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	affected, err := repo.Delete(ctx, ids[1])
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	users, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUpdatePassword(t *testing.T) {
	_, repo := setupTestRepo(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, "user_to_update", "old_password")
	require.NoError(t, err)

	affected, err := repo.UpdatePassword(ctx, user.ID, "new_strong_password")
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Password("new_strong_password"), got.Password)
	assert.Equal(t, user.Username, got.Username)

	affected, err = repo.UpdatePassword(ctx, domain.NewUserID(), "whatever")
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestDeleteUser(t *testing.T) {
	_, repo := setupTestRepo(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, "user_to_delete", "some_password")
	require.NoError(t, err)

	affected, err := repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	_, err = repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	affected, err = repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestStorageErrorsOnClosedPool(t *testing.T) {
	pool, repo := setupTestRepo(t)
	ctx := context.Background()
	require.NoError(t, pool.Close())

	var storageErr *repository.StorageError

	_, err := repo.GetByID(ctx, domain.NewUserID())
	require.ErrorAs(t, err, &storageErr)
	assert.False(t, errors.Is(err, repository.ErrNotFound))

	_, err = repo.List(ctx)
	assert.ErrorAs(t, err, &storageErr)

	_, err = repo.UpdatePassword(ctx, domain.NewUserID(), "x")
	assert.ErrorAs(t, err, &storageErr)

	_, err = repo.Delete(ctx, domain.NewUserID())
	assert.ErrorAs(t, err, &storageErr)

	_, err = repo.Create(ctx, "late", "x")
	assert.ErrorAs(t, err, &storageErr)
}
