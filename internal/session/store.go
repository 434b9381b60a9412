package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hooptrack/hooptrack/internal/models"
)

// ErrNotFound distinguishes "no such session" from a failed read; callers
// surface it as a 404, never as an empty session.
var ErrNotFound = errors.New("session not found")

// Store persists one SessionRecord per line in an append-only JSONL log.
// Create appends; Update rewrites the whole file. Both are serialized by a
// single mutex because the rewrite is unsafe under concurrent writers.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates the log's directory if needed. The log file itself is
// created lazily on first append.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create session log directory: %w", err)
	}
	return &Store{path: path}, nil
}

// NewSessionID builds a unique, sortable session identifier: a wall-clock
// prefix keeps log lines ordered by creation time, and a random suffix
// prevents the same-second collisions a purely time-derived id allows.
func NewSessionID(now time.Time) string {
	return now.Format("20060102_150405") + "_" + uuid.New().String()[:8]
}

// Create appends the record to the log.
func (s *Store) Create(record *models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", record.SessionID, err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append session %s: %w", record.SessionID, err)
	}
	return nil
}

// Get scans the log for the first record with the given id.
func (s *Store) Get(sessionID string) (*models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].SessionID == sessionID {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
}

// List returns every record, most recent first.
func (s *Store) List() ([]models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// AttachEvaluation merges an evaluation score into the named record and
// rewrites the log. The rewrite goes through a temp file and rename so a
// crash mid-update cannot truncate the log.
func (s *Store) AttachEvaluation(sessionID string, score *models.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}

	found := false
	for i := range records {
		if records[i].SessionID == sessionID {
			records[i].Evaluation = score
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}

	return s.rewrite(records)
}

func (s *Store) readAll() ([]models.SessionRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	var records []models.SessionRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var record models.SessionRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("corrupt session log line: %w", err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session log: %w", err)
	}
	return records, nil
}

func (s *Store) rewrite(records []models.SessionRecord) error {
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open temp session log: %w", err)
	}

	w := bufio.NewWriter(f)
	for i := range records {
		line, err := json.Marshal(&records[i])
		if err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("marshal session %s: %w", records[i].SessionID, err)
		}
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush session log: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close session log: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace session log: %w", err)
	}
	return nil
}
