// Package main is the AWS Lambda entrypoint. It serves API Gateway HTTP API
// (payload v2) events with the same router as the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/emailwriter/emailwriter/internal/app"
	"github.com/emailwriter/emailwriter/internal/config"
	"github.com/emailwriter/emailwriter/internal/logger"
)

var (
	appOnce sync.Once
	appInst *app.App
	appErr  error
)

func getApp(ctx context.Context) (*app.App, error) {
	appOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			appErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		log := logger.New(cfg.Log.Level, cfg.Log.Format)
		appInst, appErr = app.New(ctx, cfg, log)
	})
	return appInst, appErr
}

func main() {
	lambda.Start(handleRequest)
}

func handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Keep-warm and scheduled events carry no HTTP request
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup)
	}

	var req events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	a, err := getApp(ctx)
	if err != nil {
		return nil, err
	}

	return serveEvent(ctx, a.Handler, req)
}
