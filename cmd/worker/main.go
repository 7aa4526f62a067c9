package main

// Standalone expired-share sweeper for deployments that run the API without
// its in-process sweeper:
//   go run ./cmd/worker          # loop until SIGTERM
//   SWEEP_ONCE=true go run ./cmd/worker

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/config"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/storage/db"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
	"github.com/Sulaiman-F/wthqh-backend/internal/shares"
)

type sweeper interface {
	Run(ctx context.Context)
	SweepOnce(ctx context.Context) (int64, error)
}

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer sqlDB.Close()

	sw := shares.NewSweeper(&shares.PGRepo{DB: sqlDB}, cfg.ShareSweepEvery)
	telemetry.Info("worker.started", map[string]any{"interval": sw.Interval.String()})
	if err := run(ctx, sw, envBool("SWEEP_ONCE", false)); err != nil {
		telemetry.Error("worker.sweep_failed", map[string]any{"error": err})
		stop()
		os.Exit(1)
	}
	telemetry.Info("worker.stopped", nil)
}

func run(ctx context.Context, sw sweeper, once bool) error {
	if !once {
		sw.Run(ctx)
		return nil
	}
	n, err := sw.SweepOnce(ctx)
	if err != nil {
		return err
	}
	telemetry.Info("worker.swept_once", map[string]any{"removed": n})
	return nil
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}
