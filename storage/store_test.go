package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarvelOlas/aws-health-checker/report"
	"github.com/MarvelOlas/aws-health-checker/types"
)

func makeReport(states ...string) *types.Report {
	rpt := &types.Report{
		GeneratedAt: time.Now().UTC(),
		Tool:        "awshealth",
		Regions:     []string{"eu-west-1"},
	}
	for i, state := range states {
		rpt.Instances = append(rpt.Instances, types.Instance{
			ID:     instanceID(i),
			Region: "eu-west-1",
			State:  state,
		})
	}
	rpt.Summary = report.Summarize(rpt.Instances, rpt.Alarms)
	return rpt
}

func instanceID(i int) string {
	return "i-" + string(rune('a'+i)) + "00000"
}

func TestStore_RecordAndLast(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Empty store has no last snapshot
	last, seq, err := store.LastSnapshot()
	require.NoError(t, err)
	assert.Nil(t, last)
	assert.Zero(t, seq)

	seq1, err := store.RecordSnapshot(makeReport("running"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq1)

	seq2, err := store.RecordSnapshot(makeReport("running", "stopped"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq2)

	last, seq, err = store.LastSnapshot()
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
	require.NotNil(t, last)
	assert.Len(t, last.Instances, 2)
}

func TestStore_SequenceSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)

	_, err = store.RecordSnapshot(makeReport("running"))
	require.NoError(t, err)
	_, err = store.RecordSnapshot(makeReport("stopped"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	assert.Equal(t, int64(2), reopened.CurrentSequence())

	// Index is rebuilt from disk
	metas := reopened.ListSnapshots(0)
	require.Len(t, metas, 2)

	seq, err := reopened.RecordSnapshot(makeReport("running"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
}

func TestStore_ListSnapshots(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	for i := 0; i < 5; i++ {
		_, err := store.RecordSnapshot(makeReport("running"))
		require.NoError(t, err)
	}

	metas := store.ListSnapshots(3)
	require.Len(t, metas, 3)

	// Newest first
	assert.Equal(t, int64(5), metas[0].Sequence)
	assert.Equal(t, int64(4), metas[1].Sequence)
	assert.Equal(t, int64(3), metas[2].Sequence)

	all := store.ListSnapshots(0)
	assert.Len(t, all, 5)
}

func TestStore_GetSnapshot(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.RecordSnapshot(makeReport("running"))
	require.NoError(t, err)

	rpt, seq, err := store.GetSnapshot(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	assert.Len(t, rpt.Instances, 1)

	_, _, err = store.GetSnapshot(99)
	assert.Error(t, err)
}

func TestStore_MetaReflectsReport(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	rpt := makeReport("running", "running")
	rpt.Alarms = []types.Alarm{{Name: "cpu", Region: "eu-west-1", State: types.AlarmStateAlarm}}
	rpt.Summary = report.Summarize(rpt.Instances, rpt.Alarms)

	_, err = store.RecordSnapshot(rpt)
	require.NoError(t, err)

	metas := store.ListSnapshots(1)
	require.Len(t, metas, 1)
	assert.Equal(t, 2, metas[0].InstanceCount)
	assert.Equal(t, 1, metas[0].AlarmCount)
	assert.Equal(t, types.VerdictAlarming, metas[0].Verdict)
	assert.Equal(t, []string{"eu-west-1"}, metas[0].Regions)
}
