package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/MarvelOlas/aws-health-checker/audit"
	"github.com/MarvelOlas/aws-health-checker/check"
	"github.com/MarvelOlas/aws-health-checker/config"
	"github.com/MarvelOlas/aws-health-checker/render"
	"github.com/MarvelOlas/aws-health-checker/storage"
	"github.com/MarvelOlas/aws-health-checker/telemetry"
	"github.com/MarvelOlas/aws-health-checker/types"
)

// defaultRegion is used when neither flags nor config name one.
const defaultRegion = "eu-west-1"

// CheckCommand implements the 'awshealth check' command
type CheckCommand struct {
	Regions     []string
	Output      string
	Save        string
	ConfigPath  string
	AlarmPrefix string
	FailOnAlarm bool
	NoStore     bool
}

// Run executes the check command
func (cmd *CheckCommand) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}

	regions := cmd.resolveRegions(cfg)
	output := cmd.resolveOutput(cfg)
	logger := telemetry.NewLogger("awshealth", cfg.Log.Level)

	started := time.Now()
	checker := check.NewChecker(check.DefaultReaderFactory, logger)

	rpt, err := checker.Run(ctx, regions, types.InstanceFilter{}, types.AlarmFilter{NamePrefix: cmd.AlarmPrefix})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if !cmd.NoStore {
		cmd.persist(rpt, cfg, started, logger)
	}

	switch output {
	case "json":
		if err := render.JSON(os.Stdout, rpt); err != nil {
			return err
		}
	default:
		if err := render.Table(os.Stdout, rpt); err != nil {
			return err
		}
	}

	if cmd.Save != "" {
		if err := render.Save(cmd.Save, rpt); err != nil {
			return err
		}
		fmt.Printf("\nReport saved to: %s\n", cmd.Save)
	}

	if cmd.FailOnAlarm && rpt.Summary.ActiveAlarms > 0 {
		return fmt.Errorf("%d alarm(s) in ALARM state", rpt.Summary.ActiveAlarms)
	}

	return nil
}

func (cmd *CheckCommand) loadConfig() (*config.Config, error) {
	if cmd.ConfigPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cmd.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveRegions applies flag > config > default precedence.
func (cmd *CheckCommand) resolveRegions(cfg *config.Config) []string {
	if len(cmd.Regions) > 0 {
		return cmd.Regions
	}
	if len(cfg.Regions) > 0 {
		return cfg.Regions
	}
	return []string{defaultRegion}
}

func (cmd *CheckCommand) resolveOutput(cfg *config.Config) string {
	if cmd.Output != "" {
		return cmd.Output
	}
	return cfg.Output.Format
}

// persist stores a snapshot, reports transitions since the previous one,
// and journals the run. Persistence failures warn but never fail the check.
func (cmd *CheckCommand) persist(rpt *types.Report, cfg *config.Config, started time.Time, logger zerolog.Logger) {
	store, err := storage.Open(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to open snapshot store")
		return
	}
	defer func() { _ = store.Close() }()

	previous, prevSeq, err := store.LastSnapshot()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load previous snapshot")
	}

	seq, err := store.RecordSnapshot(rpt)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to store snapshot")
		return
	}

	if previous == nil {
		fmt.Printf("First check - establishing baseline (snapshot %d)\n\n", seq)
	} else {
		printTransitions(storage.DetectTransitions(previous, rpt), prevSeq, seq)
	}

	journal, err := audit.Open(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to open journal")
		return
	}
	defer func() { _ = journal.Close() }()

	err = journal.Append(audit.EventCheck, audit.RunRecord{
		Regions:       rpt.Regions,
		InstanceCount: len(rpt.Instances),
		AlarmCount:    len(rpt.Alarms),
		Verdict:       string(rpt.Summary.Verdict),
		Duration:      time.Since(started),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to journal check run")
	}
}

// printTransitions summarizes changes since the previous snapshot.
func printTransitions(transitions []storage.Transition, prevSeq, seq int64) {
	if len(transitions) == 0 {
		return
	}

	fmt.Printf("Changes since snapshot %d (now %d):\n", prevSeq, seq)
	for _, t := range transitions {
		switch t.Type {
		case storage.ChangeAppeared:
			fmt.Printf("   + %s %s (%s) now %s\n", t.Kind, t.ID, t.Region, t.To)
		case storage.ChangeDisappeared:
			fmt.Printf("   - %s %s (%s) was %s\n", t.Kind, t.ID, t.Region, t.From)
		case storage.ChangeStateChanged:
			fmt.Printf("   ~ %s %s (%s) %s -> %s\n", t.Kind, t.ID, t.Region, t.From, t.To)
		}
	}
	fmt.Printf("\n")
}
