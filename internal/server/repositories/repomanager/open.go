package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/server/config"
)

// Open builds the manager selected by cfg.Storage and brings its schema up
// to date.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	var (
		m   RepositoryManager
		err error
	)

	switch cfg.Storage {
	case config.StorageMemory:
		m = NewInMemoryRepositoryManager()
	case config.StoragePostgres:
		m, err = OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, err
	}
	return m, nil
}
