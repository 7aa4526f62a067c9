package shares

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo keyed by token.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Share
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Share)}
}

func (r *MemoryRepo) Insert(ctx context.Context, s Share) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[s.Token]; ok {
		return ErrTokenTaken
	}
	r.data[s.Token] = s
	return nil
}

func (r *MemoryRepo) GetByToken(ctx context.Context, token string) (Share, error) {
	if err := ctx.Err(); err != nil {
		return Share{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.data[token]
	if !ok {
		return Share{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, s := range r.data {
		if s.Expired(now) {
			delete(r.data, token)
			n++
		}
	}
	return n, nil
}

var _ Repo = (*MemoryRepo)(nil)
