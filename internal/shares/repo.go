package shares

import (
	"context"
	"time"
)

// Repo persists share tokens.
type Repo interface {
	Insert(ctx context.Context, s Share) error
	GetByToken(ctx context.Context, token string) (Share, error)
	// DeleteExpired removes shares whose expiry is at or before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
