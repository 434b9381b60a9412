package stats

import (
	"log"
	"strings"

	"github.com/hooptrack/hooptrack/internal/config"
	"github.com/hooptrack/hooptrack/internal/models"
)

// Rule awards points to a named stat when a detection's lowercased label
// contains any keyword from the rule's categories and its confidence
// strictly exceeds the threshold. Rules are non-exclusive: one detection may
// satisfy several.
type Rule struct {
	StatName   string
	Points     int
	Label      string
	Threshold  float64
	Categories []string
}

// Engine applies an ordered rule set to detections. It is stateless between
// calls: scoring the same input twice yields identical output.
type Engine struct {
	rules []Rule
}

func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// DefaultRules builds the standard basketball rule set with thresholds taken
// from configuration.
func DefaultRules(cfg config.ScoringConfig) []Rule {
	return []Rule{
		{
			StatName:   "points",
			Points:     2,
			Label:      "SHOT (+2 points)",
			Threshold:  cfg.ShotThreshold,
			Categories: []string{"shooting", "dunking"},
		},
		{
			StatName:   "assists",
			Points:     1,
			Label:      "ASSIST (+1)",
			Threshold:  cfg.AssistThreshold,
			Categories: []string{"passing"},
		},
		{
			StatName:   "blocks",
			Points:     1,
			Label:      "BLOCK (+1)",
			Threshold:  cfg.BlockThreshold,
			Categories: []string{"blocking"},
		},
	}
}

// Calculate scores the detections against the classifier's keyword mapping.
// It returns the aggregate stats map, always containing every reserved stat
// name, and a copy of the detections with dispositions filled in.
func (e *Engine) Calculate(detections []models.Detection, keywords map[string][]string) (map[string]int, []models.Detection) {
	result := make(map[string]int, len(models.StatNames))
	for _, name := range models.StatNames {
		result[name] = 0
	}
	for _, rule := range e.rules {
		if _, ok := result[rule.StatName]; !ok {
			result[rule.StatName] = 0
		}
	}

	annotated := make([]models.Detection, len(detections))
	copy(annotated, detections)

	for i := range annotated {
		actionLower := strings.ToLower(annotated[i].Action)
		var classifiedAs []string

		for _, rule := range e.rules {
			if !rule.matches(actionLower, keywords) {
				continue
			}
			if annotated[i].Confidence > rule.Threshold {
				result[rule.StatName] += rule.Points
				classifiedAs = append(classifiedAs, rule.Label)
				log.Printf("  -> Counted as %s! Total %s: %d", rule.Label, rule.StatName, result[rule.StatName])
			}
		}

		if len(classifiedAs) == 0 {
			annotated[i].ClassifiedAs = models.DispositionIgnored
		} else {
			annotated[i].ClassifiedAs = strings.Join(classifiedAs, ", ")
		}
	}

	return result, annotated
}

func (r Rule) matches(actionLower string, keywords map[string][]string) bool {
	for _, category := range r.Categories {
		for _, keyword := range keywords[category] {
			if strings.Contains(actionLower, keyword) {
				return true
			}
		}
	}
	return false
}
