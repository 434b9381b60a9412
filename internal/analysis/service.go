package analysis

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/hooptrack/hooptrack/internal/classifier"
	"github.com/hooptrack/hooptrack/internal/config"
	"github.com/hooptrack/hooptrack/internal/models"
	"github.com/hooptrack/hooptrack/internal/session"
	"github.com/hooptrack/hooptrack/internal/stats"
	"github.com/hooptrack/hooptrack/internal/storage"
	"github.com/hooptrack/hooptrack/internal/video"
)

// SourceOpener abstracts video decoding so the pipeline can be driven by a
// fake source in tests.
type SourceOpener func(path string) (Source, error)

// Source is a probed, one-pass frame stream.
type Source interface {
	video.FrameSource
	FPS() float64
	TotalFrames() int
	Duration() float64
}

// OpenFileSource is the production SourceOpener.
func OpenFileSource(path string) (Source, error) {
	return video.OpenFile(path)
}

// Service orchestrates one analysis run: window the video into clips, label
// each clip, gate and persist detections, score stats, and append the
// session record.
type Service struct {
	factory  *classifier.Factory
	engine   *stats.Engine
	frames   storage.FrameStorage
	sessions *session.Store
	open     SourceOpener
	cfg      config.AnalysisConfig
}

func NewService(factory *classifier.Factory, engine *stats.Engine, frames storage.FrameStorage,
	sessions *session.Store, open SourceOpener, cfg config.AnalysisConfig) *Service {
	return &Service{
		factory:  factory,
		engine:   engine,
		frames:   frames,
		sessions: sessions,
		open:     open,
		cfg:      cfg,
	}
}

// Analyze runs the full pipeline on a video file. Setup failures (unknown
// classifier, unready classifier, unopenable source, bad windowing config)
// abort the run; per-clip classification failures are absorbed as sentinel
// results and never escape.
func (s *Service) Analyze(videoPath, classifierID string) (*models.SessionRecord, error) {
	cls, err := s.factory.Get(classifierID)
	if err != nil {
		return nil, err
	}
	if !cls.Ready() {
		return nil, fmt.Errorf("classifier %q is not ready", classifierID)
	}

	src, err := s.open(videoPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	log.Printf("Video: %d frames at %.2f fps", src.TotalFrames(), src.FPS())

	extractor, err := video.NewExtractor(src, video.ExtractorOptions{
		FPS:      src.FPS(),
		Duration: s.cfg.ClipDuration,
		Overlap:  s.cfg.ClipOverlap,
		MaxClips: s.cfg.MaxClips,
	})
	if err != nil {
		return nil, err
	}

	sessionID := session.NewSessionID(time.Now())
	fps := src.FPS()

	var detections []models.Detection
	clipCount := 0
	for {
		clip, err := extractor.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		clipCount++
		if clipCount%5 == 1 {
			log.Printf("Processing clip %d (frame %d)", clipCount, clip.StartFrame)
		}

		result := cls.Classify(clip)
		if result.Action == "" || result.Confidence <= s.cfg.DetectionThreshold {
			continue
		}

		timestamp := float64(clip.StartFrame) / fps

		middle := clip.MiddleFrame()
		frameImage, err := s.frames.SaveFrame(sessionID, clip.StartFrame, middle.Image)
		if err != nil {
			// A detection without its snapshot is still a detection.
			log.Printf("Failed to save frame %d: %v", middle.Index, err)
			frameImage = ""
		}

		detections = append(detections, models.Detection{
			Timestamp:  round2(timestamp),
			Frame:      clip.StartFrame,
			Action:     result.Action,
			Confidence: round3(result.Confidence),
			FrameImage: frameImage,
			SessionID:  sessionID,
		})
		log.Printf("Detected %q (confidence: %.2f) at %.2fs", result.Action, result.Confidence, timestamp)
	}
	log.Printf("Extracted %d clips, %d detections above threshold", clipCount, len(detections))

	statsMap, annotated := s.engine.Calculate(detections, cls.ActionKeywords())

	record := &models.SessionRecord{
		SessionID:       sessionID,
		Timestamp:       time.Now().Format(time.RFC3339),
		VideoDuration:   round2(src.Duration()),
		TotalDetections: len(annotated),
		ClassifierUsed:  cls.Name(),
		Stats:           statsMap,
		Detections:      annotated,
	}

	if err := s.sessions.Create(record); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}
	log.Printf("Saved session %s: points=%d assists=%d blocks=%d",
		sessionID, statsMap["points"], statsMap["assists"], statsMap["blocks"])

	return record, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
