// Package check runs a health check across one or more AWS regions.
package check

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MarvelOlas/aws-health-checker/providers/aws"
	"github.com/MarvelOlas/aws-health-checker/report"
	"github.com/MarvelOlas/aws-health-checker/types"
)

// maxRegionConcurrency bounds the region fan-out.
const maxRegionConcurrency = 4

// RegionReader reads instance and alarm state for a single region.
type RegionReader interface {
	Region() string
	ListInstances(ctx context.Context, filter types.InstanceFilter) ([]types.Instance, error)
	ListAlarms(ctx context.Context, filter types.AlarmFilter) ([]types.Alarm, error)
}

// ReaderFactory builds a RegionReader for a region.
type ReaderFactory func(ctx context.Context, region string) (RegionReader, error)

// DefaultReaderFactory builds real AWS-backed readers.
func DefaultReaderFactory(ctx context.Context, region string) (RegionReader, error) {
	return aws.New(ctx, region)
}

// Checker runs health checks.
type Checker struct {
	newReader ReaderFactory
	logger    zerolog.Logger
}

// NewChecker creates a checker with the given reader factory.
func NewChecker(factory ReaderFactory, logger zerolog.Logger) *Checker {
	return &Checker{newReader: factory, logger: logger}
}

// regionResult holds one region's collected state.
type regionResult struct {
	instances []types.Instance
	alarms    []types.Alarm
}

// Run executes one health check across the given regions.
func (c *Checker) Run(ctx context.Context, regions []string, instFilter types.InstanceFilter, alarmFilter types.AlarmFilter) (*types.Report, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("at least one region is required")
	}

	started := time.Now()
	results := make([]regionResult, len(regions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxRegionConcurrency)

	for i, region := range regions {
		g.Go(func() error {
			result, err := c.checkRegion(gctx, region)
			if err != nil {
				return fmt.Errorf("region %s: %w", region, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rpt := mergeResults(regions, results)
	rpt.Instances = filterInstances(rpt.Instances, instFilter)
	rpt.Alarms = filterAlarms(rpt.Alarms, alarmFilter)
	rpt.Summary = report.Summarize(rpt.Instances, rpt.Alarms)

	c.logger.Info().
		Strs("regions", regions).
		Int("instances", len(rpt.Instances)).
		Int("alarms", len(rpt.Alarms)).
		Str("verdict", string(rpt.Summary.Verdict)).
		Dur("duration", time.Since(started)).
		Msg("check complete")

	return rpt, nil
}

// checkRegion collects instances and alarms for one region.
func (c *Checker) checkRegion(ctx context.Context, region string) (regionResult, error) {
	reader, err := c.newReader(ctx, region)
	if err != nil {
		return regionResult{}, fmt.Errorf("create reader: %w", err)
	}

	instances, err := reader.ListInstances(ctx, types.InstanceFilter{})
	if err != nil {
		return regionResult{}, err
	}

	alarms, err := reader.ListAlarms(ctx, types.AlarmFilter{})
	if err != nil {
		return regionResult{}, err
	}

	c.logger.Debug().
		Str("region", region).
		Int("instances", len(instances)).
		Int("alarms", len(alarms)).
		Msg("region checked")

	return regionResult{instances: instances, alarms: alarms}, nil
}

// mergeResults flattens per-region results into one report, deterministically ordered.
func mergeResults(regions []string, results []regionResult) *types.Report {
	rpt := &types.Report{
		GeneratedAt: time.Now().UTC(),
		Tool:        "awshealth",
		Regions:     regions,
	}

	for _, result := range results {
		rpt.Instances = append(rpt.Instances, result.instances...)
		rpt.Alarms = append(rpt.Alarms, result.alarms...)
	}

	sort.Slice(rpt.Instances, func(i, j int) bool {
		if rpt.Instances[i].Region != rpt.Instances[j].Region {
			return rpt.Instances[i].Region < rpt.Instances[j].Region
		}
		return rpt.Instances[i].ID < rpt.Instances[j].ID
	})
	sort.Slice(rpt.Alarms, func(i, j int) bool {
		if rpt.Alarms[i].Region != rpt.Alarms[j].Region {
			return rpt.Alarms[i].Region < rpt.Alarms[j].Region
		}
		return rpt.Alarms[i].Name < rpt.Alarms[j].Name
	})

	return rpt
}

func filterInstances(instances []types.Instance, filter types.InstanceFilter) []types.Instance {
	if len(filter.States) == 0 && len(filter.Tags) == 0 {
		return instances
	}
	var filtered []types.Instance
	for _, instance := range instances {
		if filter.Matches(instance) {
			filtered = append(filtered, instance)
		}
	}
	return filtered
}

func filterAlarms(alarms []types.Alarm, filter types.AlarmFilter) []types.Alarm {
	if len(filter.States) == 0 && filter.NamePrefix == "" {
		return alarms
	}
	var filtered []types.Alarm
	for _, alarm := range alarms {
		if filter.Matches(alarm) {
			filtered = append(filtered, alarm)
		}
	}
	return filtered
}
