package evaluation

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hooptrack/hooptrack/internal/models"
)

type fakeSessions struct {
	records  map[string]*models.SessionRecord
	attached map[string]*models.Score
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		records:  map[string]*models.SessionRecord{},
		attached: map[string]*models.Score{},
	}
}

func (f *fakeSessions) Get(sessionID string) (*models.SessionRecord, error) {
	record, ok := f.records[sessionID]
	if !ok {
		return nil, errors.New("session not found")
	}
	return record, nil
}

func (f *fakeSessions) AttachEvaluation(sessionID string, score *models.Score) error {
	if _, ok := f.records[sessionID]; !ok {
		return errors.New("session not found")
	}
	f.attached[sessionID] = score
	return nil
}

func writeGroundTruth(t *testing.T, dir, video string, gt *models.GroundTruth) {
	t.Helper()
	data, err := json.Marshal(gt)
	if err != nil {
		t.Fatalf("marshal ground truth: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, video+".json"), data, 0644); err != nil {
		t.Fatalf("write ground truth: %v", err)
	}
}

func TestLoaderMissingGroundTruth(t *testing.T) {
	loader := NewLoader(t.TempDir())

	_, err := loader.Load("unseen.mp4")
	if !errors.Is(err, ErrNoGroundTruth) {
		t.Errorf("expected ErrNoGroundTruth, got %v", err)
	}
}

func TestLoaderResolvesByBaseName(t *testing.T) {
	dir := t.TempDir()
	writeGroundTruth(t, dir, "trim", &models.GroundTruth{
		VideoName:     "trim.mp4",
		ExpectedStats: map[string]int{"points": 2},
	})

	loader := NewLoader(dir)

	// Any path form and extension resolve to the same answer key.
	for _, name := range []string{"trim.mp4", "uploads/trim.mp4", "trim.mov"} {
		gt, err := loader.Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if gt.ExpectedStats["points"] != 2 {
			t.Errorf("Load(%q): unexpected ground truth %+v", name, gt)
		}
	}
}

func TestServiceRun(t *testing.T) {
	dir := t.TempDir()
	writeGroundTruth(t, dir, "trim", &models.GroundTruth{
		VideoName: "trim.mp4",
		ExpectedDetections: []models.ExpectedEvent{
			{Type: "shot", Timestamp: 10.0, Tolerance: 1.0},
		},
		ExpectedStats: map[string]int{"points": 2},
	})

	sessions := newFakeSessions()
	sessions.records["s1"] = &models.SessionRecord{
		SessionID: "s1",
		Stats:     map[string]int{"points": 2},
		Detections: []models.Detection{
			{Timestamp: 10.4, ClassifiedAs: "SHOT (+2 points)"},
		},
	}

	history, err := NewHistory(filepath.Join(t.TempDir(), "evaluations.jsonl"))
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}

	service := NewService(NewLoader(dir), sessions, history)

	score, result, err := service.Run("trim.mp4", "s1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if score.OverallScore != 98.4 {
		t.Errorf("expected overall score 98.4, got %v", score.OverallScore)
	}
	if len(result.TruePositives) != 1 {
		t.Errorf("expected 1 true positive, got %d", len(result.TruePositives))
	}

	if attached := sessions.attached["s1"]; attached == nil || attached.OverallScore != 98.4 {
		t.Errorf("expected score attached to session, got %+v", attached)
	}

	entries, err := history.BySession("s1")
	if err != nil {
		t.Fatalf("BySession: %v", err)
	}
	if len(entries) != 1 || entries[0].VideoName != "trim.mp4" {
		t.Errorf("expected one history entry for trim.mp4, got %+v", entries)
	}
}

func TestServiceRunNoGroundTruth(t *testing.T) {
	sessions := newFakeSessions()
	history, err := NewHistory(filepath.Join(t.TempDir(), "evaluations.jsonl"))
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}

	service := NewService(NewLoader(t.TempDir()), sessions, history)

	_, _, err = service.Run("unseen.mp4", "s1")
	if !errors.Is(err, ErrNoGroundTruth) {
		t.Errorf("expected ErrNoGroundTruth, got %v", err)
	}
}

func TestHistoryBySession(t *testing.T) {
	history, err := NewHistory(filepath.Join(t.TempDir(), "evaluations.jsonl"))
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}

	// No file yet: empty, not an error.
	entries, err := history.BySession("s1")
	if err != nil {
		t.Fatalf("BySession before any append: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}

	if err := history.Append("s1", "a.mp4", &models.Score{OverallScore: 50}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := history.Append("s2", "b.mp4", &models.Score{OverallScore: 60}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := history.Append("s1", "a.mp4", &models.Score{OverallScore: 70}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err = history.BySession("s1")
	if err != nil {
		t.Fatalf("BySession: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for s1, got %d", len(entries))
	}
	if entries[0].Score.OverallScore != 50 || entries[1].Score.OverallScore != 70 {
		t.Errorf("expected oldest-first ordering, got %+v", entries)
	}
}
