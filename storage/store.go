// Package storage persists health check snapshots in bbolt and detects
// state transitions between consecutive runs.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/btree"
	"go.etcd.io/bbolt"

	"github.com/MarvelOlas/aws-health-checker/types"
)

// Bucket names in bbolt
var (
	bucketSnapshots = []byte("snapshots")
	bucketMeta      = []byte("meta")
)

var keyCurrentSequence = []byte("current_sequence")

// SnapshotMeta summarizes a stored snapshot for fast listing.
type SnapshotMeta struct {
	Sequence      int64         `json:"sequence"`
	TakenAt       time.Time     `json:"taken_at"`
	Regions       []string      `json:"regions"`
	InstanceCount int           `json:"instance_count"`
	AlarmCount    int           `json:"alarm_count"`
	Verdict       types.Verdict `json:"verdict"`
}

// snapshotRecord is the on-disk form of a snapshot.
type snapshotRecord struct {
	Meta   SnapshotMeta  `json:"meta"`
	Report *types.Report `json:"report"`
}

// Store is a bbolt-backed snapshot store with an in-memory index.
type Store struct {
	mu sync.RWMutex

	// In-memory index of snapshot metadata, ordered by sequence
	index *btree.BTreeG[SnapshotMeta]

	// On-disk storage
	db *bbolt.DB

	// Current sequence number
	currentSeq int64

	dir string
}

// Open creates or opens a snapshot store in the given directory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dbPath := filepath.Join(dir, "awshealth.db")

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketSnapshots, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{
		index: btree.NewG[SnapshotMeta](32, func(a, b SnapshotMeta) bool {
			return a.Sequence < b.Sequence
		}),
		db:  db,
		dir: dir,
	}

	if err := store.loadSequence(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := store.rebuildIndex(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSnapshot persists a report and returns its sequence number.
func (s *Store) RecordSnapshot(rpt *types.Report) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentSeq++
	seq := s.currentSeq

	record := snapshotRecord{
		Meta: SnapshotMeta{
			Sequence:      seq,
			TakenAt:       rpt.GeneratedAt,
			Regions:       rpt.Regions,
			InstanceCount: len(rpt.Instances),
			AlarmCount:    len(rpt.Alarms),
			Verdict:       rpt.Summary.Verdict,
		},
		Report: rpt,
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		value, err := json.Marshal(record)
		if err != nil {
			return err
		}

		if err := tx.Bucket(bucketSnapshots).Put(int64ToBytes(seq), value); err != nil {
			return err
		}

		return tx.Bucket(bucketMeta).Put(keyCurrentSequence, int64ToBytes(seq))
	})
	if err != nil {
		s.currentSeq--
		return 0, fmt.Errorf("failed to record snapshot: %w", err)
	}

	s.index.ReplaceOrInsert(record.Meta)

	return seq, nil
}

// LastSnapshot returns the most recent stored report, or nil if none exist.
func (s *Store) LastSnapshot() (*types.Report, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentSeq == 0 {
		return nil, 0, nil
	}

	return s.getSnapshot(s.currentSeq)
}

// GetSnapshot returns the report stored at the given sequence.
func (s *Store) GetSnapshot(seq int64) (*types.Report, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getSnapshot(seq)
}

func (s *Store) getSnapshot(seq int64) (*types.Report, int64, error) {
	var record snapshotRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketSnapshots).Get(int64ToBytes(seq))
		if value == nil {
			return fmt.Errorf("snapshot %d not found", seq)
		}
		return json.Unmarshal(value, &record)
	})
	if err != nil {
		return nil, 0, err
	}

	return record.Report, record.Meta.Sequence, nil
}

// ListSnapshots returns up to limit snapshot metadata entries, newest first.
func (s *Store) ListSnapshots(limit int) []SnapshotMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var metas []SnapshotMeta
	s.index.Descend(func(meta SnapshotMeta) bool {
		metas = append(metas, meta)
		return limit <= 0 || len(metas) < limit
	})

	return metas
}

// CurrentSequence returns the latest sequence number.
func (s *Store) CurrentSequence() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSeq
}

// loadSequence restores the sequence counter from the meta bucket.
func (s *Store) loadSequence() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketMeta).Get(keyCurrentSequence)
		if value != nil {
			s.currentSeq = bytesToInt64(value)
		}
		return nil
	})
}

// rebuildIndex reloads snapshot metadata from disk.
func (s *Store) rebuildIndex() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshots).ForEach(func(_, value []byte) error {
			var record snapshotRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return fmt.Errorf("failed to rebuild index: %w", err)
			}
			s.index.ReplaceOrInsert(record.Meta)
			return nil
		})
	})
}

func int64ToBytes(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v)) // #nosec G115 -- sequence is never negative
	return buf
}

func bytesToInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b)) // #nosec G115
}
