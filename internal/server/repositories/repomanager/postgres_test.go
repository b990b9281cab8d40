package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPostgresRepositoryManager_Factories(t *testing.T) {
	db, _ := newDB(t)

	m := NewPostgresRepositoryManager(db)
	assert.NotNil(t, m.Users())
	assert.NotNil(t, m.RefreshTokens())
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if got != db {
			return errors.New("unexpected db")
		}
		gotDir = dir
		return nil
	}

	m := NewPostgresRepositoryManager(db)
	require.NoError(t, m.RunMigrations(context.Background()))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	boom := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}

	err := NewPostgresRepositoryManager(db).RunMigrations(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "run migrations")
}

func TestWithTx_CommitsSharedTransaction(t *testing.T) {
	db, mock := newDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens")).
		WithArgs("old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs("new", "u1", "a@b.c", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := NewPostgresRepositoryManager(db)
	err := m.WithTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		ok, err := tx.RefreshTokens().Delete(ctx, "old")
		if err != nil || !ok {
			return errors.New("delete failed")
		}
		return tx.RefreshTokens().Create(ctx, &models.RefreshToken{
			Token: "new", UserID: "u1", UserEmail: "a@b.c", Expires: time.Now().Add(time.Hour),
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db, mock := newDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewPostgresRepositoryManager(db).WithTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_NestedRejected(t *testing.T) {
	db, mock := newDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := NewPostgresRepositoryManager(db).WithTx(context.Background(), func(ctx context.Context, tx RepositoryManager) error {
		return tx.WithTx(ctx, func(context.Context, RepositoryManager) error { return nil })
	})
	require.ErrorIs(t, err, errNestedTx)
}

func TestPing(t *testing.T) {
	db, _ := newDB(t)

	require.NoError(t, NewPostgresRepositoryManager(db).Ping(context.Background()))
}
