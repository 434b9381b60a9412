package classifier

import (
	"github.com/hooptrack/hooptrack/internal/video"
)

// Result is the outcome of classifying one clip. Metadata is free-form
// diagnostic detail attached by the classifier.
type Result struct {
	Action     string
	Confidence float64
	Metadata   map[string]interface{}
}

// ErrorResult is the sentinel returned when classification fails internally.
// It never looks like a genuine high-confidence hit, so a single bad clip
// cannot corrupt a run.
func ErrorResult() Result {
	return Result{Action: "error", Confidence: 0}
}

// Classifier labels a clip with a basketball action and a confidence.
//
// Initialize may load large resources and must be idempotent: calling it on
// a ready classifier is a no-op. Classify must not panic on malformed input;
// internal failures surface as ErrorResult.
type Classifier interface {
	Initialize() error
	Ready() bool
	Classify(clip *video.Clip) Result
	Name() string

	// ActionKeywords maps canonical event categories to the free-text
	// keywords this classifier's labels may contain. Classifiers override it
	// because they word the same concept differently.
	ActionKeywords() map[string][]string
}

// DefaultActionKeywords is the vocabulary shared by classifiers that emit
// generic action labels.
func DefaultActionKeywords() map[string][]string {
	return map[string][]string{
		"shooting":  {"shooting", "throw", "toss"},
		"passing":   {"passing", "hand", "throw"},
		"dribbling": {"dribbling", "bounce"},
		"dunking":   {"dunk", "slam"},
		"blocking":  {"block", "defend"},
		"catching":  {"catch", "grab"},
	}
}
