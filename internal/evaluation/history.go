package evaluation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hooptrack/hooptrack/internal/models"
)

// HistoryEntry is one evaluation outcome, keyed by session id for a later
// join against the session log.
type HistoryEntry struct {
	SessionID   string        `json:"session_id"`
	VideoName   string        `json:"video_name"`
	EvaluatedAt string        `json:"evaluated_at"`
	Score       *models.Score `json:"score"`
}

// History is an append-only JSONL log of evaluation outcomes, parallel in
// shape to the session log.
type History struct {
	mu   sync.Mutex
	path string
}

func NewHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create evaluation history directory: %w", err)
	}
	return &History{path: path}, nil
}

func (h *History) Append(sessionID, videoName string, score *models.Score) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := HistoryEntry{
		SessionID:   sessionID,
		VideoName:   videoName,
		EvaluatedAt: time.Now().Format(time.RFC3339),
		Score:       score,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal evaluation entry: %w", err)
	}

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open evaluation history: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append evaluation entry: %w", err)
	}
	return nil
}

// BySession returns every recorded outcome for a session, oldest first.
func (h *History) BySession(sessionID string) ([]HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open evaluation history: %w", err)
	}
	defer f.Close()

	var entries []HistoryEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry HistoryEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("corrupt evaluation history line: %w", err)
		}
		if entry.SessionID == sessionID {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read evaluation history: %w", err)
	}
	return entries, nil
}
