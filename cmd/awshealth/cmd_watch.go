package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MarvelOlas/aws-health-checker/audit"
	"github.com/MarvelOlas/aws-health-checker/check"
	"github.com/MarvelOlas/aws-health-checker/config"
	"github.com/MarvelOlas/aws-health-checker/storage"
	"github.com/MarvelOlas/aws-health-checker/telemetry"
	"github.com/MarvelOlas/aws-health-checker/watcher"
)

var (
	watchInterval    time.Duration
	watchMetricsPort int
	watchRegions     []string
	watchConfigPath  string
	watchStorePath   string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run continuous health checks",
	Long: `Run awshealth in watch mode for continuous health checking.

Each cycle re-checks EC2 and CloudWatch, stores a snapshot, and logs
every state transition since the previous cycle.

Features:
- Prometheus metrics on /metrics endpoint
- Health check on /health
- Snapshot history for transition detection
- Graceful shutdown on SIGTERM/SIGINT`,
	Example: `  awshealth watch                          # Watch with defaults
  awshealth watch --interval 1m            # Check every minute
  awshealth watch --metrics-port 9090      # Custom metrics port
  awshealth watch --region us-east-1       # Specific region`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Check interval (default from config, 5m)")
	watchCmd.Flags().IntVar(&watchMetricsPort, "metrics-port", 0, "Metrics HTTP server port (default from config, 2112)")
	watchCmd.Flags().StringSliceVarP(&watchRegions, "region", "r", nil, "AWS region to watch (repeatable)")
	watchCmd.Flags().StringVarP(&watchConfigPath, "config", "c", "", "Path to config file")
	watchCmd.Flags().StringVar(&watchStorePath, "store", "", "Snapshot store directory")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadWatchConfig()
	if err != nil {
		return err
	}

	regions := watchRegions
	if len(regions) == 0 {
		regions = cfg.Regions
	}
	if len(regions) == 0 {
		regions = []string{defaultRegion}
	}

	interval := watchInterval
	if interval == 0 {
		interval = cfg.Watch.Interval
	}
	metricsPort := watchMetricsPort
	if metricsPort == 0 {
		metricsPort = cfg.Watch.MetricsPort
	}
	storePath := watchStorePath
	if storePath == "" {
		storePath = cfg.Store.Path
	}

	logger := telemetry.NewLogger("awshealth", cfg.Log.Level)

	provider, err := telemetry.NewProvider(ctx, cfg.OTLP)
	if err != nil {
		return fmt.Errorf("failed to create telemetry provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	store, err := storage.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer func() { _ = store.Close() }()

	journal, err := audit.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() { _ = journal.Close() }()

	checker := check.NewChecker(check.DefaultReaderFactory, logger)

	w, err := watcher.New(watcher.Config{
		Interval:    interval,
		MetricsPort: metricsPort,
		Regions:     regions,
	}, checker, store, journal, provider, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	logger.Info().
		Strs("regions", regions).
		Dur("interval", interval).
		Int("metrics_port", metricsPort).
		Str("store", storePath).
		Msg("starting watch mode")

	return w.Run(ctx)
}

func loadWatchConfig() (*config.Config, error) {
	if watchConfigPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(watchConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
