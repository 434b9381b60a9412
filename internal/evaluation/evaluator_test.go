package evaluation

import (
	"math"
	"testing"

	"github.com/hooptrack/hooptrack/internal/models"
)

func TestEvaluationRoundTrip(t *testing.T) {
	groundTruth := &models.GroundTruth{
		VideoName: "trim.mp4",
		ExpectedDetections: []models.ExpectedEvent{
			{Type: "shot", Timestamp: 10.0, Tolerance: 1.0},
		},
		ExpectedStats: map[string]int{"points": 2},
	}
	session := &models.SessionRecord{
		SessionID: "test",
		Stats:     map[string]int{"points": 2},
		Detections: []models.Detection{
			{Timestamp: 10.4, ClassifiedAs: "SHOT (+2 points)"},
		},
	}

	result := Evaluate(groundTruth, session)

	if len(result.TruePositives) != 1 {
		t.Fatalf("expected 1 true positive, got %d", len(result.TruePositives))
	}
	if len(result.FalsePositives) != 0 {
		t.Errorf("expected 0 false positives, got %d", len(result.FalsePositives))
	}
	if len(result.FalseNegatives) != 0 {
		t.Errorf("expected 0 false negatives, got %d", len(result.FalseNegatives))
	}
	if math.Abs(result.TruePositives[0].TimeError-0.4) > 1e-9 {
		t.Errorf("expected time error 0.4, got %v", result.TruePositives[0].TimeError)
	}

	score := CalculateScore(result, groundTruth)

	if score.Precision != 100 || score.Recall != 100 || score.F1Score != 100 {
		t.Errorf("expected perfect detection metrics, got p=%v r=%v f1=%v",
			score.Precision, score.Recall, score.F1Score)
	}
	if score.StatsAccuracy != 100 {
		t.Errorf("expected stats accuracy 100, got %v", score.StatsAccuracy)
	}
	if score.AvgTimeError != 0.4 {
		t.Errorf("expected avg time error 0.4, got %v", score.AvgTimeError)
	}
	if score.TimingAccuracy != 92 {
		t.Errorf("expected timing score 92, got %v", score.TimingAccuracy)
	}
	// 50·f1 + 0.3·stats + 0.2·timing = 50 + 30 + 18.4
	if score.OverallScore != 98.4 {
		t.Errorf("expected overall score 98.4, got %v", score.OverallScore)
	}
}

func TestEvaluateIgnoredNeverFalsePositive(t *testing.T) {
	groundTruth := &models.GroundTruth{
		ExpectedDetections: []models.ExpectedEvent{
			{Type: "shot", Timestamp: 5.0, Tolerance: 1.0},
		},
		ExpectedStats: map[string]int{"points": 0},
	}
	session := &models.SessionRecord{
		Stats: map[string]int{"points": 0},
		Detections: []models.Detection{
			{Timestamp: 5.2, ClassifiedAs: models.DispositionIgnored},
			{Timestamp: 8.0, ClassifiedAs: models.DispositionIgnored},
		},
	}

	result := Evaluate(groundTruth, session)

	// Ignored detections can neither match an expected event nor count
	// against precision.
	if len(result.TruePositives) != 0 {
		t.Errorf("expected no true positives, got %d", len(result.TruePositives))
	}
	if len(result.FalsePositives) != 0 {
		t.Errorf("expected no false positives from ignored detections, got %d",
			len(result.FalsePositives))
	}
	if len(result.FalseNegatives) != 1 {
		t.Errorf("expected 1 false negative, got %d", len(result.FalseNegatives))
	}
}

func TestEvaluateFirstFitMatching(t *testing.T) {
	groundTruth := &models.GroundTruth{
		ExpectedDetections: []models.ExpectedEvent{
			{Type: "shot", Timestamp: 10.0, Tolerance: 2.0},
		},
		ExpectedStats: map[string]int{},
	}
	// Both detections qualify; the second is closer in time, but first-fit
	// takes the first in list order.
	session := &models.SessionRecord{
		Stats: map[string]int{},
		Detections: []models.Detection{
			{Timestamp: 8.5, ClassifiedAs: "SHOT (+2 points)"},
			{Timestamp: 10.1, ClassifiedAs: "SHOT (+2 points)"},
		},
	}

	result := Evaluate(groundTruth, session)

	if len(result.TruePositives) != 1 {
		t.Fatalf("expected 1 true positive, got %d", len(result.TruePositives))
	}
	if result.TruePositives[0].ActualTime != 8.5 {
		t.Errorf("expected first-fit match at 8.5, got %v", result.TruePositives[0].ActualTime)
	}
	if len(result.FalsePositives) != 1 || result.FalsePositives[0].Timestamp != 10.1 {
		t.Errorf("expected the unconsumed detection as a false positive, got %+v",
			result.FalsePositives)
	}
}

func TestEvaluateConsumedDetectionCannotRematch(t *testing.T) {
	groundTruth := &models.GroundTruth{
		ExpectedDetections: []models.ExpectedEvent{
			{Type: "shot", Timestamp: 10.0, Tolerance: 1.0},
			{Type: "shot", Timestamp: 10.5, Tolerance: 1.0},
		},
		ExpectedStats: map[string]int{},
	}
	session := &models.SessionRecord{
		Stats: map[string]int{},
		Detections: []models.Detection{
			{Timestamp: 10.2, ClassifiedAs: "SHOT (+2 points)"},
		},
	}

	result := Evaluate(groundTruth, session)

	if len(result.TruePositives) != 1 {
		t.Errorf("expected 1 true positive, got %d", len(result.TruePositives))
	}
	if len(result.FalseNegatives) != 1 {
		t.Errorf("expected the second event unmatched, got %d false negatives",
			len(result.FalseNegatives))
	}
}

func TestEvaluateOutsideTolerance(t *testing.T) {
	groundTruth := &models.GroundTruth{
		ExpectedDetections: []models.ExpectedEvent{
			{Type: "shot", Timestamp: 10.0, Tolerance: 1.0},
		},
		ExpectedStats: map[string]int{},
	}
	session := &models.SessionRecord{
		Stats: map[string]int{},
		Detections: []models.Detection{
			{Timestamp: 12.0, ClassifiedAs: "SHOT (+2 points)"},
		},
	}

	result := Evaluate(groundTruth, session)

	if len(result.TruePositives) != 0 {
		t.Errorf("expected no match outside tolerance, got %d", len(result.TruePositives))
	}
	if len(result.FalseNegatives) != 1 || len(result.FalsePositives) != 1 {
		t.Errorf("expected 1 FN and 1 FP, got %d FN %d FP",
			len(result.FalseNegatives), len(result.FalsePositives))
	}
}

func TestEvaluateStatComparison(t *testing.T) {
	groundTruth := &models.GroundTruth{
		ExpectedDetections: []models.ExpectedEvent{},
		ExpectedStats:      map[string]int{"points": 4, "assists": 2, "blocks": 0},
	}
	session := &models.SessionRecord{
		Stats:      map[string]int{"points": 4, "assists": 1, "blocks": 0},
		Detections: []models.Detection{},
	}

	result := Evaluate(groundTruth, session)

	if len(result.StatsCorrect) != 2 {
		t.Errorf("expected 2 correct stats, got %v", result.StatsCorrect)
	}
	statErr, ok := result.StatsErrors["assists"]
	if !ok || statErr.Expected != 2 || statErr.Actual != 1 {
		t.Errorf("expected assists error {2 1}, got %+v", result.StatsErrors)
	}

	score := CalculateScore(result, groundTruth)
	if math.Abs(score.StatsAccuracy-66.67) > 1e-9 {
		t.Errorf("expected stats accuracy 66.67, got %v", score.StatsAccuracy)
	}
}

func TestCalculateScoreZeroDenominators(t *testing.T) {
	groundTruth := &models.GroundTruth{ExpectedStats: map[string]int{}}
	result := &models.EvaluationResult{
		StatsCorrect: map[string]int{},
		StatsErrors:  map[string]models.StatError{},
	}

	score := CalculateScore(result, groundTruth)

	if score.Precision != 0 || score.Recall != 0 || score.F1Score != 0 {
		t.Errorf("expected zero metrics with no detections, got %+v", score)
	}
	if score.AvgTimeError != 0 {
		t.Errorf("expected zero time error with no true positives, got %v", score.AvgTimeError)
	}
	if score.TimingAccuracy != 100 {
		t.Errorf("expected timing score 100 with no time error, got %v", score.TimingAccuracy)
	}
}
