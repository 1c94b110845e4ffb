package check

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarvelOlas/aws-health-checker/types"
)

// fakeReader returns canned state for one region
type fakeReader struct {
	region    string
	instances []types.Instance
	alarms    []types.Alarm
	err       error
}

func (f *fakeReader) Region() string { return f.region }

func (f *fakeReader) ListInstances(ctx context.Context, filter types.InstanceFilter) ([]types.Instance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.instances, nil
}

func (f *fakeReader) ListAlarms(ctx context.Context, filter types.AlarmFilter) ([]types.Alarm, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.alarms, nil
}

func factoryFor(readers map[string]*fakeReader) ReaderFactory {
	return func(ctx context.Context, region string) (RegionReader, error) {
		reader, ok := readers[region]
		if !ok {
			return nil, errors.New("unknown region")
		}
		return reader, nil
	}
}

func TestChecker_Run_MultiRegion(t *testing.T) {
	readers := map[string]*fakeReader{
		"us-east-1": {
			region: "us-east-1",
			instances: []types.Instance{
				{ID: "i-bbb", Region: "us-east-1", State: "running"},
			},
			alarms: []types.Alarm{
				{Name: "cpu", Region: "us-east-1", State: types.AlarmStateOK},
			},
		},
		"eu-west-1": {
			region: "eu-west-1",
			instances: []types.Instance{
				{ID: "i-aaa", Region: "eu-west-1", State: "running"},
				{ID: "i-ccc", Region: "eu-west-1", State: "running"},
			},
		},
	}

	checker := NewChecker(factoryFor(readers), zerolog.Nop())

	rpt, err := checker.Run(context.Background(), []string{"us-east-1", "eu-west-1"}, types.InstanceFilter{}, types.AlarmFilter{})
	require.NoError(t, err)

	require.Len(t, rpt.Instances, 3)
	require.Len(t, rpt.Alarms, 1)

	// Merged output is ordered by region then ID
	assert.Equal(t, "i-aaa", rpt.Instances[0].ID)
	assert.Equal(t, "i-ccc", rpt.Instances[1].ID)
	assert.Equal(t, "i-bbb", rpt.Instances[2].ID)

	assert.Equal(t, types.VerdictHealthy, rpt.Summary.Verdict)
	assert.Equal(t, 3, rpt.Summary.TotalInstances)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, rpt.Regions)
	assert.False(t, rpt.GeneratedAt.IsZero())
}

func TestChecker_Run_RegionFailure(t *testing.T) {
	readers := map[string]*fakeReader{
		"eu-west-1": {region: "eu-west-1"},
		"us-east-1": {region: "us-east-1", err: errors.New("throttled")},
	}

	checker := NewChecker(factoryFor(readers), zerolog.Nop())

	_, err := checker.Run(context.Background(), []string{"eu-west-1", "us-east-1"}, types.InstanceFilter{}, types.AlarmFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region us-east-1")
	assert.Contains(t, err.Error(), "throttled")
}

func TestChecker_Run_NoRegions(t *testing.T) {
	checker := NewChecker(factoryFor(nil), zerolog.Nop())

	_, err := checker.Run(context.Background(), nil, types.InstanceFilter{}, types.AlarmFilter{})
	assert.Error(t, err)
}

func TestChecker_Run_Filters(t *testing.T) {
	readers := map[string]*fakeReader{
		"eu-west-1": {
			region: "eu-west-1",
			instances: []types.Instance{
				{ID: "i-up", Region: "eu-west-1", State: "running"},
				{ID: "i-down", Region: "eu-west-1", State: "stopped"},
			},
			alarms: []types.Alarm{
				{Name: "prod-cpu", Region: "eu-west-1", State: types.AlarmStateAlarm},
				{Name: "dev-cpu", Region: "eu-west-1", State: types.AlarmStateAlarm},
			},
		},
	}

	checker := NewChecker(factoryFor(readers), zerolog.Nop())

	rpt, err := checker.Run(context.Background(), []string{"eu-west-1"},
		types.InstanceFilter{States: []string{"running"}},
		types.AlarmFilter{NamePrefix: "prod-"})
	require.NoError(t, err)

	require.Len(t, rpt.Instances, 1)
	assert.Equal(t, "i-up", rpt.Instances[0].ID)
	require.Len(t, rpt.Alarms, 1)
	assert.Equal(t, "prod-cpu", rpt.Alarms[0].Name)
	assert.Equal(t, types.VerdictAlarming, rpt.Summary.Verdict)
}

func TestChecker_Run_EmptyAccount(t *testing.T) {
	readers := map[string]*fakeReader{
		"eu-west-1": {region: "eu-west-1"},
	}

	checker := NewChecker(factoryFor(readers), zerolog.Nop())

	rpt, err := checker.Run(context.Background(), []string{"eu-west-1"}, types.InstanceFilter{}, types.AlarmFilter{})
	require.NoError(t, err)

	assert.Empty(t, rpt.Instances)
	assert.Empty(t, rpt.Alarms)
	assert.Equal(t, types.VerdictEmpty, rpt.Summary.Verdict)
}
