package shares

import (
	"context"
	"time"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/metrics"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

// DefaultSweepInterval is used when no interval is configured.
const DefaultSweepInterval = 10 * time.Minute

// Sweeper periodically deletes expired shares.
type Sweeper struct {
	Repo     Repo
	Interval time.Duration
	Now      func() time.Time
}

// NewSweeper constructs a Sweeper.
func NewSweeper(repo Repo, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{Repo: repo, Interval: interval, Now: time.Now}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			telemetry.Warn("shares.sweep_failed", map[string]any{"error": err})
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce deletes every share that has expired.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	n, err := s.Repo.DeleteExpired(ctx, now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddSharesExpired(n)
		telemetry.Info("shares.swept", map[string]any{"removed": n})
	}
	return n, nil
}
