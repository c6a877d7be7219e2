package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spacesedan/transcriptflow/config"
	"github.com/spacesedan/transcriptflow/internal/logging"
	"github.com/spacesedan/transcriptflow/internal/processing"
	"github.com/spacesedan/transcriptflow/internal/streams"
)

var pipeline *processing.Pipeline

// init runs once per Lambda cold start
func init() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = config.DEFAULT_APP_ENV
	}
	config.LoadEnv(env)

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("[TranscriptProcessor] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.Environment, cfg.LogLevel)

	pipeline, err = processing.Bootstrap(context.Background(), cfg)
	if err != nil {
		slog.Error("[TranscriptProcessor] Failed to initialize pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("[TranscriptProcessor] Initialization complete",
		slog.String("environment", cfg.Environment))
}

// HandleRequest processes every ObjectCreated record of an S3 notification.
// Returning an error lets the Lambda runtime retry the whole event.
func HandleRequest(ctx context.Context, event events.S3Event) error {
	return streams.ProcessS3Event(ctx, pipeline.Processor, event)
}

func main() {
	lambda.Start(HandleRequest)
}
