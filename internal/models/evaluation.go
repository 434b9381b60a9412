package models

// ExpectedEvent is one hand-authored event the analyzed video is known to
// contain: an event type ("shot", "assist", ...), when it happens, and how
// far off a detection may be and still count as a match.
type ExpectedEvent struct {
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
	Tolerance float64 `json:"tolerance"`
}

// GroundTruth is the externally authored answer key for one video.
type GroundTruth struct {
	VideoName          string          `json:"video_name"`
	ExpectedDetections []ExpectedEvent `json:"expected_detections"`
	ExpectedStats      map[string]int  `json:"expected_stats"`
}

type TruePositive struct {
	Type         string  `json:"type"`
	ExpectedTime float64 `json:"expected_time"`
	ActualTime   float64 `json:"actual_time"`
	TimeError    float64 `json:"time_error"`
}

type FalsePositive struct {
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
}

type FalseNegative struct {
	Type         string  `json:"type"`
	ExpectedTime float64 `json:"expected_time"`
}

type StatError struct {
	Expected int `json:"expected"`
	Actual   int `json:"actual"`
}

// EvaluationResult is the raw outcome of matching a session's detections
// against ground truth, before any scoring.
type EvaluationResult struct {
	TruePositives  []TruePositive       `json:"true_positives"`
	FalsePositives []FalsePositive      `json:"false_positives"`
	FalseNegatives []FalseNegative      `json:"false_negatives"`
	StatsCorrect   map[string]int       `json:"stats_correct"`
	StatsErrors    map[string]StatError `json:"stats_errors"`
}

// Score is the flat accuracy summary derived from an EvaluationResult.
// Precision, recall and f1 are reported as 0-100 percentages; the overall
// score however weighs the raw 0-1 f1 by 50, which keeps it comparable with
// historical scores and is deliberately preserved.
type Score struct {
	OverallScore   float64 `json:"overall_score"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1Score        float64 `json:"f1_score"`
	StatsAccuracy  float64 `json:"stats_accuracy"`
	TimingAccuracy float64 `json:"timing_accuracy"`
	AvgTimeError   float64 `json:"avg_time_error_seconds"`
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
}
