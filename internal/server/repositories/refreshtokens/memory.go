package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// MemoryRepository keeps refresh tokens in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]models.RefreshToken
	now    func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tokens: make(map[string]models.RefreshToken),
		now:    time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *token
	stored.CreatedAt = r.now().UTC()
	r.tokens[token.Token] = stored
	return nil
}

func (r *MemoryRepository) FindOne(ctx context.Context, token, userEmail string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tokens[token]
	if !ok || rt.UserEmail != userEmail {
		return nil, common.ErrorNotFound
	}
	return &rt, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, token string) (bool, error) {
	_, ok := r.Take(token)
	return ok, nil
}

// Expired lists the tokens that expired at or before now.
func (r *MemoryRepository) Expired(now time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for k, rt := range r.tokens {
		if rt.Expired(now) {
			out = append(out, k)
		}
	}
	return out
}

// Take removes token and returns the record it held.
func (r *MemoryRepository) Take(token string) (models.RefreshToken, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.tokens[token]
	if ok {
		delete(r.tokens, token)
	}
	return rt, ok
}

// Restore puts back a record returned by Take, timestamps included.
func (r *MemoryRepository) Restore(rt models.RefreshToken) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[rt.Token] = rt
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for k, rt := range r.tokens {
		if rt.Expired(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}
