// Package audit keeps an append-only JSON-lines journal of check runs.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType defines the type of journal entry
type EventType string

const (
	EventCheck      EventType = "check"
	EventWatchCycle EventType = "watch_cycle"
	EventFailed     EventType = "failed"
)

// Entry represents a single journal entry
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Sequence  int64           `json:"sequence"`
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error,omitempty"`
}

// RunRecord is the payload journaled for every check run.
type RunRecord struct {
	Regions       []string      `json:"regions"`
	InstanceCount int           `json:"instance_count"`
	AlarmCount    int           `json:"alarm_count"`
	Verdict       string        `json:"verdict"`
	Duration      time.Duration `json:"duration_ns"`
}

// Journal provides append-only logging of check runs for audit
type Journal struct {
	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	sequence int64
	dir      string
}

// Open creates or opens a journal in the specified directory
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	// Use timestamp in filename for rotation
	filename := fmt.Sprintf("awshealth-%s.journal", time.Now().Format("20060102"))
	path := filepath.Join(dir, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 -- dir comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	return &Journal{
		file:   file,
		writer: bufio.NewWriter(file),
		dir:    dir,
	}, nil
}

// Close flushes and closes the journal
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.writer.Flush(); err != nil {
		return err
	}
	return j.file.Close()
}

// Append adds an entry to the journal
func (j *Journal) Append(eventType EventType, data interface{}) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.append(eventType, data, "")
}

// AppendError adds an error entry to the journal
func (j *Journal) AppendError(eventType EventType, data interface{}, errToLog error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.append(eventType, data, errToLog.Error())
}

func (j *Journal) append(eventType EventType, data interface{}, errMsg string) error {
	j.sequence++

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	entry := Entry{
		Timestamp: time.Now(),
		Sequence:  j.sequence,
		Type:      eventType,
		Data:      jsonData,
		Error:     errMsg,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if _, err := j.writer.Write(line); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	if _, err := j.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	// Flush immediately for durability
	if err := j.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	return j.file.Sync()
}

// Reader provides journal replay functionality
type Reader struct {
	scanner *bufio.Scanner
	file    *os.File
}

// NewReader creates a journal reader for the specified file
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path) // #nosec G304 -- path from Replay glob
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	return &Reader{
		scanner: bufio.NewScanner(file),
		file:    file,
	}, nil
}

// Next reads the next entry from the journal
func (r *Reader) Next() (*Entry, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	var entry Entry
	if err := json.Unmarshal(r.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	return &entry, nil
}

// Close closes the reader
func (r *Reader) Close() error {
	return r.file.Close()
}

// Replay replays journal entries recorded after a specific time
func Replay(dir string, since time.Time, handler func(*Entry) error) error {
	files, err := filepath.Glob(filepath.Join(dir, "awshealth-*.journal"))
	if err != nil {
		return fmt.Errorf("failed to list journal files: %w", err)
	}

	for _, file := range files {
		if err := replayFile(file, since, handler); err != nil {
			return err
		}
	}

	return nil
}

func replayFile(path string, since time.Time, handler func(*Entry) error) error {
	reader, err := NewReader(path)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	for {
		entry, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if entry.Timestamp.After(since) {
			if err := handler(entry); err != nil {
				return err
			}
		}
	}

	return nil
}
