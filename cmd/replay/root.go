package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spacesedan/transcriptflow/config"
	"github.com/spacesedan/transcriptflow/internal/logging"
	"github.com/spacesedan/transcriptflow/internal/processing"
)

var (
	appEnv   string
	pipeline *processing.Pipeline
)

var rootCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-drive transcript enrichment outside Lambda",
	Long: `Runs the transcript enrichment pipeline against a single S3 object, or probes
the DynamoDB table and search cluster it writes to.

Configuration is read the same way as the Lambda: config/envs/.env.<env>
followed by the process environment.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&appEnv, "env", envOr("APP_ENV", config.DEFAULT_APP_ENV), "environment file to load from config/envs")
}

func setup(cmd *cobra.Command, _ []string) error {
	config.LoadEnv(appEnv)

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.InitLogger(cfg.Environment, cfg.LogLevel)

	pipeline, err = processing.Bootstrap(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
