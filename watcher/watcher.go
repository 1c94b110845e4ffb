// Package watcher runs continuous health checks with metric export.
package watcher

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/MarvelOlas/aws-health-checker/audit"
	"github.com/MarvelOlas/aws-health-checker/check"
	"github.com/MarvelOlas/aws-health-checker/storage"
	"github.com/MarvelOlas/aws-health-checker/telemetry"
	"github.com/MarvelOlas/aws-health-checker/types"
)

// Config holds watcher configuration
type Config struct {
	Interval    time.Duration
	MetricsPort int
	Regions     []string
}

// Watcher manages the continuous check loop
type Watcher struct {
	cfg      Config
	checker  *check.Checker
	store    *storage.Store
	journal  *audit.Journal
	provider *telemetry.Provider
	metrics  *Metrics
	logger   zerolog.Logger

	startTime  time.Time
	cycleCount atomic.Int64
}

// New creates a watcher
func New(cfg Config, checker *check.Checker, store *storage.Store, journal *audit.Journal, provider *telemetry.Provider, logger zerolog.Logger) (*Watcher, error) {
	metrics, err := NewMetrics(provider.Meter())
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	return &Watcher{
		cfg:       cfg,
		checker:   checker,
		store:     store,
		journal:   journal,
		provider:  provider,
		metrics:   metrics,
		logger:    logger,
		startTime: time.Now(),
	}, nil
}

// Run starts the check loop and the metrics server, blocking until
// the context is cancelled or a signal arrives.
func (w *Watcher) Run(ctx context.Context) error {
	var group run.Group

	// Signal handler
	group.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	// Metrics HTTP server
	server := w.metricsServer()
	group.Add(
		func() error {
			w.logger.Info().Str("addr", server.Addr).Msg("metrics server listening")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		},
	)

	// Check loop
	loopCtx, loopCancel := context.WithCancel(ctx)
	group.Add(
		func() error {
			return w.loop(loopCtx)
		},
		func(error) {
			loopCancel()
		},
	)

	err := group.Run()
	if _, isSignal := err.(run.SignalError); isSignal {
		w.logger.Info().Msg("shutting down")
		return nil
	}
	return err
}

// loop runs one cycle immediately, then one per interval.
func (w *Watcher) loop(ctx context.Context) error {
	w.cycle(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// cycle runs one check, persists it, and reports transitions.
func (w *Watcher) cycle(ctx context.Context) {
	w.cycleCount.Add(1)
	started := time.Now()

	rpt, err := w.checker.Run(ctx, w.cfg.Regions, types.InstanceFilter{}, types.AlarmFilter{})
	if err != nil {
		w.metrics.RecordError(ctx)
		w.metrics.RecordCycle(ctx, "error", time.Since(started).Seconds())
		_ = w.journal.AppendError(audit.EventFailed, audit.RunRecord{Regions: w.cfg.Regions}, err)
		w.logger.Error().Err(err).Msg("check failed")
		return
	}

	previous, prevSeq, err := w.store.LastSnapshot()
	if err != nil {
		w.logger.Warn().Err(err).Msg("failed to load previous snapshot")
	}

	seq, err := w.store.RecordSnapshot(rpt)
	if err != nil {
		w.logger.Warn().Err(err).Msg("failed to store snapshot")
	}

	if previous != nil {
		w.reportTransitions(ctx, previous, rpt, prevSeq, seq)
	}

	_ = w.journal.Append(audit.EventWatchCycle, audit.RunRecord{
		Regions:       w.cfg.Regions,
		InstanceCount: len(rpt.Instances),
		AlarmCount:    len(rpt.Alarms),
		Verdict:       string(rpt.Summary.Verdict),
		Duration:      time.Since(started),
	})

	w.metrics.RecordObserved(ctx, int64(len(rpt.Instances)), int64(len(rpt.Alarms)), string(rpt.Summary.Verdict))
	w.metrics.RecordCycle(ctx, "ok", time.Since(started).Seconds())
}

func (w *Watcher) reportTransitions(ctx context.Context, previous, current *types.Report, prevSeq, seq int64) {
	transitions := storage.DetectTransitions(previous, current)

	for _, t := range transitions {
		w.metrics.RecordTransition(ctx, string(t.Type), t.Kind, t.Region)

		w.logger.Info().
			Str("kind", t.Kind).
			Str("id", t.ID).
			Str("region", t.Region).
			Str("change", string(t.Type)).
			Str("from", t.From).
			Str("to", t.To).
			Int64("prev_snapshot", prevSeq).
			Int64("snapshot", seq).
			Msg("state transition")
	}
}

// metricsServer builds the /metrics and /health HTTP server.
func (w *Watcher) metricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(w.provider.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		fmt.Fprintf(rw, `{"status":"healthy","uptime_seconds":%d,"cycles":%d}`,
			int64(time.Since(w.startTime).Seconds()), w.cycleCount.Load())
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", w.cfg.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// CycleCount returns total cycles run
func (w *Watcher) CycleCount() int64 {
	return w.cycleCount.Load()
}
