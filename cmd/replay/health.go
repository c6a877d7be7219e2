package main

import (
	"context"
	"errors"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/transcriptflow/internal/monitoring"
)

var (
	healthWatch    bool
	healthInterval time.Duration
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the DynamoDB table and search cluster",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVarP(&healthWatch, "watch", "w", false, "keep probing until interrupted")
	healthCmd.Flags().DurationVar(&healthInterval, "interval", monitoring.HEALTHCHECK_INTERVAL, "probe interval in watch mode")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	sinks := pipeline.HealthCheckers()

	if healthWatch {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var healthy atomic.Bool
		printStatuses(cmd, monitoring.CheckSinks(ctx, sinks))
		monitoring.MonitorSinkHealth(ctx, sinks, healthInterval, &healthy, func(s []monitoring.SinkStatus) {
			printStatuses(cmd, s)
		})
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	statuses := monitoring.CheckSinks(ctx, sinks)
	printStatuses(cmd, statuses)
	if !monitoring.AllHealthy(statuses) {
		return errors.New("one or more sinks are unhealthy")
	}
	return nil
}

func printStatuses(cmd *cobra.Command, statuses []monitoring.SinkStatus) {
	for _, s := range statuses {
		state := "ok"
		if !s.Healthy {
			state = "UNHEALTHY"
		}
		cmd.Printf("%-12s %s\n", s.Name, state)
	}
}
