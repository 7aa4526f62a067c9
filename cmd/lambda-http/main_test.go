package main

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyRetriesFailedBuild(t *testing.T) {
	gin.SetMode(gin.TestMode)
	calls := 0
	p := &proxy{build: func(context.Context) (*ginadapter.GinLambdaV2, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("database unreachable")
		}
		r := gin.New()
		r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		return ginadapter.NewV2(r), nil
	}}

	req := events.APIGatewayV2HTTPRequest{
		RawPath: "/health",
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodGet, Path: "/health"},
		},
	}

	resp, err := p.handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, resp.Body, `"success":false`)

	resp, err = p.handle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", resp.Body)

	_, _ = p.handle(context.Background(), req)
	assert.Equal(t, 2, calls)
}
