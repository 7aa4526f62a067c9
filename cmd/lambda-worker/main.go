package main

// Scheduled expired-share sweep. Wire it to an EventBridge rate rule:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Sulaiman-F/wthqh-backend/internal/bootstrap"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/config"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	app = built
}

// sweepResult is returned to the scheduler so invocations show up in the
// Lambda console.
type sweepResult struct {
	Removed int64 `json:"removed"`
}

func handler(ctx context.Context, event events.CloudWatchEvent) (sweepResult, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": initErr})
		return sweepResult{}, initErr
	}

	n, err := app.Sweeper.SweepOnce(ctx)
	if err != nil {
		telemetry.Error("lambda.sweep_failed", map[string]any{"error": err, "event_id": event.ID})
		return sweepResult{}, err
	}
	return sweepResult{Removed: n}, nil
}

func main() {
	lambda.Start(handler)
}
