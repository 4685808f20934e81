package sqlstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/database"
	"user-service/internal/domain"
	"user-service/internal/repository"
)

// setupPostgresRepo connects to the Postgres database named by DATABASE_URL and
// skips the test when none is configured.
func setupPostgresRepo(t *testing.T) repository.UserRepository {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	dialect, _, err := database.ParseURL(url)
	if err != nil || dialect != database.Postgres {
		t.Skip("DATABASE_URL does not point at postgres")
	}

	pool, err := database.Open(context.Background(), database.Options{URL: url, MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewUserRepository(pool)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

// uniqueName keeps rows from separate runs apart on a shared database.
func uniqueName(prefix string) domain.Username {
	return domain.Username(prefix + "_" + domain.NewUserID().String())
}

func TestPostgresUserLifecycle(t *testing.T) {
	repo := setupPostgresRepo(t)
	ctx := context.Background()

	name := uniqueName("pg_user")
	created, err := repo.Create(ctx, name, "old_password")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Delete(context.Background(), created.ID) })

	_, err = domain.ParseUserID(created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, name, created.Username)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *byID)

	byName, err := repo.GetByUsername(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	affected, err := repo.UpdatePassword(ctx, created.ID, "new_password")
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	byID, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Password("new_password"), byID.Password)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, *byID)

	affected, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	affected, err = repo.UpdatePassword(ctx, created.ID, "again")
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestPostgresDuplicateUsername(t *testing.T) {
	repo := setupPostgresRepo(t)
	ctx := context.Background()

	name := uniqueName("pg_dup")
	first, err := repo.Create(ctx, name, "p1")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Delete(context.Background(), first.ID) })

	_, err = repo.Create(ctx, name, "p2")
	var storageErr *repository.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "insert user", storageErr.Op)
}
