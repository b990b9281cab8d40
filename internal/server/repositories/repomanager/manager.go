// Package repomanager hands out repository implementations for the selected
// storage backend and runs units of work across them transactionally.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository

	// WithTx runs fn with a manager whose repositories share one transaction.
	// fn's error aborts the whole unit.
	WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error

	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
