package evaluation

import (
	"fmt"
	"log"

	"github.com/hooptrack/hooptrack/internal/models"
)

// SessionSource is the slice of the session store the evaluator needs.
type SessionSource interface {
	Get(sessionID string) (*models.SessionRecord, error)
	AttachEvaluation(sessionID string, score *models.Score) error
}

// Service runs the full evaluation flow: load ground truth, load the
// session, match and score, then persist the outcome on the session record
// and in the history log.
type Service struct {
	loader   *Loader
	sessions SessionSource
	history  *History
}

func NewService(loader *Loader, sessions SessionSource, history *History) *Service {
	return &Service{loader: loader, sessions: sessions, history: history}
}

// Run evaluates a stored session against the ground truth for videoName.
// Missing ground truth or a missing session surface as errors wrapping
// ErrNoGroundTruth / the store's not-found error, never as a zero score.
func (s *Service) Run(videoName, sessionID string) (*models.Score, *models.EvaluationResult, error) {
	groundTruth, err := s.loader.Load(videoName)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}

	result := Evaluate(groundTruth, session)
	score := CalculateScore(result, groundTruth)

	if err := s.sessions.AttachEvaluation(sessionID, score); err != nil {
		return nil, nil, fmt.Errorf("attach evaluation to session %s: %w", sessionID, err)
	}
	if err := s.history.Append(sessionID, groundTruth.VideoName, score); err != nil {
		// The score is already attached to the session; a history append
		// failure is logged, not fatal.
		log.Printf("Failed to append evaluation history for %s: %v", sessionID, err)
	}

	return score, result, nil
}
