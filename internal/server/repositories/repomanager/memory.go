package repomanager

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. WithTx
// serializes units of work and undoes their writes when fn fails. Writes made
// outside WithTx are not isolated from a running unit.
type InMemoryRepositoryManager struct {
	users         *users.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
	txMu          *sync.Mutex
}

var _ RepositoryManager = (*InMemoryRepositoryManager)(nil)

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
		txMu:          &sync.Mutex{},
	}
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	tx := &memoryTx{InMemoryRepositoryManager: m}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// memoryTx journals an undo step for every write made through it.
type memoryTx struct {
	*InMemoryRepositoryManager
	undo []func()
}

func (t *memoryTx) Users() users.Repository {
	return txUsers{MemoryRepository: t.users, tx: t}
}

func (t *memoryTx) RefreshTokens() refreshtokens.Repository {
	return txRefreshTokens{MemoryRepository: t.refreshTokens, tx: t}
}

// WithTx joins the running unit; the outer lock is already held.
func (t *memoryTx) WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	return fn(ctx, t)
}

func (t *memoryTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

type txUsers struct {
	*users.MemoryRepository
	tx *memoryTx
}

func (r txUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u, err := r.MemoryRepository.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	id := u.ID
	r.tx.undo = append(r.tx.undo, func() { r.MemoryRepository.Remove(id) })
	return u, nil
}

type txRefreshTokens struct {
	*refreshtokens.MemoryRepository
	tx *memoryTx
}

func (r txRefreshTokens) Create(ctx context.Context, token *models.RefreshToken) error {
	if err := r.MemoryRepository.Create(ctx, token); err != nil {
		return err
	}
	key := token.Token
	r.tx.undo = append(r.tx.undo, func() { r.MemoryRepository.Take(key) })
	return nil
}

func (r txRefreshTokens) Delete(ctx context.Context, token string) (bool, error) {
	rt, ok := r.MemoryRepository.Take(token)
	if !ok {
		return false, nil
	}
	r.tx.undo = append(r.tx.undo, func() { r.MemoryRepository.Restore(rt) })
	return true, nil
}

func (r txRefreshTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, token := range r.MemoryRepository.Expired(now) {
		ok, err := r.Delete(ctx, token)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *InMemoryRepositoryManager) Ping(context.Context) error          { return nil }
func (m *InMemoryRepositoryManager) Close() error                        { return nil }
