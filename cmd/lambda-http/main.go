// Command lambda-http serves the API behind API Gateway (HTTP API, payload
// v2). Expired shares are swept by cmd/lambda-worker on a schedule.
//
//	GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http
package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/goccy/go-json"

	"github.com/Sulaiman-F/wthqh-backend/internal/bootstrap"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/config"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

// proxy builds the app on first use. A failed build is retried on the next
// invocation instead of poisoning the warm container.
type proxy struct {
	mu      sync.Mutex
	adapter *ginadapter.GinLambdaV2
	build   func(context.Context) (*ginadapter.GinLambdaV2, error)
}

func (p *proxy) get(ctx context.Context) (*ginadapter.GinLambdaV2, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.adapter != nil {
		return p.adapter, nil
	}
	a, err := p.build(ctx)
	if err != nil {
		return nil, err
	}
	p.adapter = a
	return a, nil
}

func (p *proxy) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	adapter, err := p.get(ctx)
	if err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": err})
		return unavailable(), nil
	}
	return adapter.ProxyWithContext(ctx, req)
}

func unavailable() events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(map[string]any{"success": false, "message": "Service unavailable"})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func buildAdapter(ctx context.Context) (*ginadapter.GinLambdaV2, error) {
	app, err := bootstrap.BuildContext(ctx, config.Load())
	if err != nil {
		return nil, err
	}
	return ginadapter.NewV2(app.Router), nil
}

func main() {
	p := &proxy{build: buildAdapter}
	lambda.Start(p.handle)
}
