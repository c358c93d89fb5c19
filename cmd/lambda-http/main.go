package main

// Build the Lambda handler binary (onnxruntime_go needs cgo):
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=1 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"triage-backend/internal/bootstrap"
	"triage-backend/internal/shared/config"
	"triage-backend/internal/shared/server/respond"
	"triage-backend/internal/shared/telemetry"
)

// The catalog and bundle load once per execution environment and are reused
// across invocations.
var (
	coldStart sync.Once
	startErr  error
	proxy     *ginadapter.GinLambdaV2
)

func start() {
	cfg, err := config.Load()
	if err != nil {
		startErr = err
		return
	}
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)

	app, err := bootstrap.Build(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		startErr = err
		return
	}
	health := app.Service.Health()
	telemetry.Info("lambda.cold_start", map[string]any{
		"ml_model_loaded":  health.MLModelLoaded,
		"symptoms_db_size": health.SymptomsDBSize,
	})
	proxy = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	coldStart.Do(start)
	if startErr != nil {
		telemetry.Error("lambda.start_failed", map[string]any{"error": startErr.Error()})
		return unavailable("service failed to start"), nil
	}
	return proxy.ProxyWithContext(ctx, req)
}

func unavailable(message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{
		Error: respond.ErrorBody{Code: respond.CodeInternal, Message: message},
	})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Cache-Control": "no-store",
		},
	}
}

func main() {
	lambda.Start(handler)
}
