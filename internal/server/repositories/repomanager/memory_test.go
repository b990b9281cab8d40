package repomanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepositoryManager_WithTxSharesRepositories(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()

	err := m.WithTx(ctx, func(ctx context.Context, tx RepositoryManager) error {
		_, err := tx.Users().Create(ctx, &models.User{ID: "u1", Email: "a@b.c", Role: models.RoleUser})
		return err
	})
	require.NoError(t, err)

	u, err := m.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", u.Email)
}

func TestInMemoryRepositoryManager_WithTxReturnsFnError(t *testing.T) {
	boom := errors.New("boom")
	err := NewInMemoryRepositoryManager().WithTx(context.Background(), func(context.Context, RepositoryManager) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestInMemoryRepositoryManager_WithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()
	expires := time.Now().Add(time.Hour)

	require.NoError(t, m.RefreshTokens().Create(ctx, &models.RefreshToken{Token: "old", UserEmail: "a@b.c", Expires: expires}))
	before, err := m.RefreshTokens().FindOne(ctx, "old", "a@b.c")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = m.WithTx(ctx, func(ctx context.Context, tx RepositoryManager) error {
		deleted, err := tx.RefreshTokens().Delete(ctx, "old")
		require.NoError(t, err)
		require.True(t, deleted)
		require.NoError(t, tx.RefreshTokens().Create(ctx, &models.RefreshToken{Token: "new", UserEmail: "a@b.c", Expires: expires}))
		_, err = tx.Users().Create(ctx, &models.User{ID: "u1", Email: "a@b.c", Role: models.RoleUser})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	after, err := m.RefreshTokens().FindOne(ctx, "old", "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = m.RefreshTokens().FindOne(ctx, "new", "a@b.c")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = m.Users().FindByID(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = m.Users().FindByEmail(ctx, "a@b.c")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInMemoryRepositoryManager_WithTxKeepsWritesOutsideTheUnit(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()
	expires := time.Now().Add(time.Hour)

	err := m.WithTx(ctx, func(ctx context.Context, tx RepositoryManager) error {
		require.NoError(t, m.RefreshTokens().Create(ctx, &models.RefreshToken{Token: "outside", UserEmail: "a@b.c", Expires: expires}))
		return errors.New("boom")
	})
	require.Error(t, err)

	_, err = m.RefreshTokens().FindOne(ctx, "outside", "a@b.c")
	assert.NoError(t, err)
}

func TestInMemoryRepositoryManager_WithTxDeleteExpiredRollsBack(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()
	require.NoError(t, m.RefreshTokens().Create(ctx, &models.RefreshToken{Token: "stale", UserEmail: "a@b.c", Expires: time.Now().Add(-time.Hour)}))

	err := m.WithTx(ctx, func(ctx context.Context, tx RepositoryManager) error {
		n, err := tx.RefreshTokens().DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return errors.New("boom")
	})
	require.Error(t, err)

	_, err = m.RefreshTokens().FindOne(ctx, "stale", "a@b.c")
	assert.NoError(t, err)
}

func TestOpen_Memory(t *testing.T) {
	m, err := Open(context.Background(), &config.Config{Storage: config.StorageMemory})
	require.NoError(t, err)
	require.IsType(t, &InMemoryRepositoryManager{}, m)
	assert.NoError(t, m.Ping(context.Background()))
	assert.NoError(t, m.Close())
}

func TestOpen_UnknownStorage(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Storage: "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage "mongo"`)
}
