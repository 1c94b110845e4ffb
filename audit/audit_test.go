package audit

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_AppendAndReplay(t *testing.T) {
	dir := t.TempDir()

	journal, err := Open(dir)
	require.NoError(t, err)

	record := RunRecord{
		Regions:       []string{"eu-west-1"},
		InstanceCount: 3,
		AlarmCount:    1,
		Verdict:       "healthy",
		Duration:      2 * time.Second,
	}

	require.NoError(t, journal.Append(EventCheck, record))
	require.NoError(t, journal.Append(EventWatchCycle, record))
	require.NoError(t, journal.Close())

	var entries []*Entry
	err = Replay(dir, time.Time{}, func(entry *Entry) error {
		entries = append(entries, entry)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, EventCheck, entries[0].Type)
	assert.Equal(t, int64(1), entries[0].Sequence)
	assert.Equal(t, EventWatchCycle, entries[1].Type)
	assert.Equal(t, int64(2), entries[1].Sequence)

	var decoded RunRecord
	require.NoError(t, json.Unmarshal(entries[0].Data, &decoded))
	assert.Equal(t, record, decoded)
}

func TestJournal_AppendError(t *testing.T) {
	dir := t.TempDir()

	journal, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, journal.AppendError(EventFailed, RunRecord{Regions: []string{"eu-west-1"}}, errors.New("throttled")))
	require.NoError(t, journal.Close())

	var entries []*Entry
	require.NoError(t, Replay(dir, time.Time{}, func(entry *Entry) error {
		entries = append(entries, entry)
		return nil
	}))

	require.Len(t, entries, 1)
	assert.Equal(t, EventFailed, entries[0].Type)
	assert.Equal(t, "throttled", entries[0].Error)
}

func TestReplay_Since(t *testing.T) {
	dir := t.TempDir()

	journal, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, journal.Append(EventCheck, RunRecord{}))
	require.NoError(t, journal.Close())

	var count int
	require.NoError(t, Replay(dir, time.Now().Add(time.Hour), func(*Entry) error {
		count++
		return nil
	}))
	assert.Zero(t, count)
}

func TestReplay_EmptyDir(t *testing.T) {
	require.NoError(t, Replay(t.TempDir(), time.Time{}, func(*Entry) error {
		t.Fatal("handler should not be called")
		return nil
	}))
}
