package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

var openDB = sql.Open

// Connect opens a pgx-backed pool and waits up to opts.ConnectWait for the
// first successful ping.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	pool, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(pool, opts)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	attempt := 0
	ping := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		err := pool.PingContext(pingCtx)
		if err != nil && opts.ConnectWait > 0 {
			telemetry.Warn("db.ping_retry", map[string]any{"attempt": attempt, "error": err})
		}
		return err
	}
	if err := backoff.Retry(ping, connectBackOff(ctx, opts.ConnectWait)); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := pool.Stats()
	telemetry.Info("db.connected", map[string]any{
		"attempts": attempt,
		"max_open": stats.MaxOpenConnections,
	})
	return pool, nil
}

func connectBackOff(ctx context.Context, wait time.Duration) backoff.BackOff {
	if wait <= 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = wait
	return backoff.WithContext(b, ctx)
}

func configurePool(pool *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	pool.SetMaxOpenConns(opts.MaxOpenConns)
	pool.SetMaxIdleConns(opts.MaxIdleConns)
	pool.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

// shared is the process-wide pool used by Lambda handlers, where every
// invocation re-enters bootstrap on a warm container.
var shared struct {
	mu sync.Mutex
	db *sql.DB
}

// GetSingleton returns the process-wide pool, connecting on first use.
// Concurrent callers wait for the connecting one. A failed attempt leaves no
// pool behind, so a later call retries.
func GetSingleton(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.db != nil {
		return shared.db, nil
	}
	pool, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	shared.db = pool
	return pool, nil
}

// CloseSingleton closes the process-wide pool, if any, so a later
// GetSingleton reconnects.
func CloseSingleton() error {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.db == nil {
		return nil
	}
	err := shared.db.Close()
	shared.db = nil
	return err
}
