package evaluation

import (
	"math"
	"strings"

	"github.com/hooptrack/hooptrack/internal/models"
)

// Evaluate matches a session's detections against ground truth.
//
// For each expected event, the first in-order detection whose disposition
// contains the event type, actually scored points, and falls inside the time
// tolerance is taken. First-fit is deliberate: when two detections both
// qualify, the earlier one in list order wins, not the temporally closest.
// A matched detection is consumed and cannot satisfy a second event.
func Evaluate(groundTruth *models.GroundTruth, session *models.SessionRecord) *models.EvaluationResult {
	result := &models.EvaluationResult{
		TruePositives:  []models.TruePositive{},
		FalsePositives: []models.FalsePositive{},
		FalseNegatives: []models.FalseNegative{},
		StatsCorrect:   map[string]int{},
		StatsErrors:    map[string]models.StatError{},
	}

	consumed := make(map[int]bool)

	for _, expected := range groundTruth.ExpectedDetections {
		idx, ok := matchDetection(expected, session.Detections, consumed)
		if !ok {
			result.FalseNegatives = append(result.FalseNegatives, models.FalseNegative{
				Type:         expected.Type,
				ExpectedTime: expected.Timestamp,
			})
			continue
		}
		consumed[idx] = true
		actual := session.Detections[idx]
		result.TruePositives = append(result.TruePositives, models.TruePositive{
			Type:         expected.Type,
			ExpectedTime: expected.Timestamp,
			ActualTime:   actual.Timestamp,
			TimeError:    math.Abs(expected.Timestamp - actual.Timestamp),
		})
	}

	// Unconsumed detections count as false positives only if they scored;
	// ignored detections are noise, not wrong answers.
	for i, actual := range session.Detections {
		if consumed[i] || !actual.Scored() {
			continue
		}
		result.FalsePositives = append(result.FalsePositives, models.FalsePositive{
			Type:      actual.ClassifiedAs,
			Timestamp: actual.Timestamp,
		})
	}

	for statName, expectedValue := range groundTruth.ExpectedStats {
		actualValue := session.Stats[statName]
		if expectedValue == actualValue {
			result.StatsCorrect[statName] = expectedValue
		} else {
			result.StatsErrors[statName] = models.StatError{
				Expected: expectedValue,
				Actual:   actualValue,
			}
		}
	}

	return result
}

func matchDetection(expected models.ExpectedEvent, detections []models.Detection, consumed map[int]bool) (int, bool) {
	expectedType := strings.ToUpper(expected.Type)

	for i, detection := range detections {
		if consumed[i] {
			continue
		}
		classifiedAs := strings.ToUpper(detection.ClassifiedAs)
		if !strings.Contains(classifiedAs, expectedType) || !strings.Contains(classifiedAs, "(+") {
			continue
		}
		if math.Abs(expected.Timestamp-detection.Timestamp) <= expected.Tolerance {
			return i, true
		}
	}
	return 0, false
}

// CalculateScore reduces an evaluation to the weighted composite accuracy
// score. Precision, recall and f1 are reported as 0-100 percentages, but the
// overall score weighs the raw 0-1 f1 by 50 while the percentage-scaled
// stats and timing components get fractional weights; the asymmetry matches
// historical scores and must not be normalized away.
func CalculateScore(result *models.EvaluationResult, groundTruth *models.GroundTruth) *models.Score {
	tp := len(result.TruePositives)
	fp := len(result.FalsePositives)
	fn := len(result.FalseNegatives)

	precision := 0.0
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	recall := 0.0
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	statsAccuracy := 0.0
	if len(groundTruth.ExpectedStats) > 0 {
		statsAccuracy = float64(len(result.StatsCorrect)) / float64(len(groundTruth.ExpectedStats)) * 100
	}

	avgTimeError := 0.0
	if tp > 0 {
		sum := 0.0
		for _, t := range result.TruePositives {
			sum += t.TimeError
		}
		avgTimeError = sum / float64(tp)
	}
	timingScore := math.Max(0, 100-avgTimeError*20)

	overall := f1*50 + statsAccuracy*0.3 + timingScore*0.2

	return &models.Score{
		OverallScore:   round2(overall),
		Precision:      round2(precision * 100),
		Recall:         round2(recall * 100),
		F1Score:        round2(f1 * 100),
		StatsAccuracy:  round2(statsAccuracy),
		TimingAccuracy: round2(timingScore),
		AvgTimeError:   round2(avgTimeError),
		TruePositives:  tp,
		FalsePositives: fp,
		FalseNegatives: fn,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
