package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/hooptrack/hooptrack/internal/analysis"
	"github.com/hooptrack/hooptrack/internal/classifier"
	"github.com/hooptrack/hooptrack/internal/config"
	"github.com/hooptrack/hooptrack/internal/session"
	"github.com/hooptrack/hooptrack/internal/stats"
	"github.com/hooptrack/hooptrack/internal/storage"
	"github.com/hooptrack/hooptrack/internal/vision"
)

// One-shot analysis of a local video file, bypassing the HTTP surface.
func main() {
	var videoPath = flag.String("video", "", "Path to the video file to analyze")
	var classifierID = flag.String("classifier", "trajectory", "Classifier to use")
	flag.Parse()

	if *videoPath == "" {
		log.Fatal("Please provide a video path with -video")
	}

	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	frameStore, err := storage.NewFrameStore(cfg.Storage.FramesDir)
	if err != nil {
		log.Fatal("Failed to initialize frame store: ", err)
	}
	sessions, err := session.NewStore(cfg.Storage.DataDir + "/sessions.jsonl")
	if err != nil {
		log.Fatal("Failed to initialize session store: ", err)
	}

	registry := classifier.NewRegistry()
	registry.Register("trajectory", "Ball Trajectory",
		"Infers the action from the ball's path across the clip",
		func() classifier.Classifier {
			return classifier.NewTrajectoryClassifier(vision.NewColorBallDetector())
		})
	if cfg.OpenAI.APIKey != "" {
		openAICfg := classifier.CaptionConfig{
			APIKey:        cfg.OpenAI.APIKey,
			Model:         cfg.OpenAI.Model,
			FramesPerClip: cfg.OpenAI.FramesPerClip,
			FrameSize:     cfg.OpenAI.FrameSize,
			Timeout:       time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
		}
		registry.Register("caption", "Vision Caption",
			"Asks an OpenAI vision model to label sampled frames",
			func() classifier.Classifier {
				return classifier.NewCaptionClassifier(openAICfg)
			})
	}

	service := analysis.NewService(
		classifier.NewFactory(registry),
		stats.NewEngine(stats.DefaultRules(cfg.Scoring)),
		frameStore, sessions, analysis.OpenFileSource, cfg.Analysis)

	record, err := service.Analyze(*videoPath, *classifierID)
	if err != nil {
		log.Fatal("Analysis failed: ", err)
	}

	fmt.Printf("Session: %s (classifier: %s)\n", record.SessionID, record.ClassifierUsed)
	fmt.Printf("Duration: %.2fs, detections: %d\n", record.VideoDuration, record.TotalDetections)
	fmt.Printf("Stats: points=%d assists=%d steals=%d blocks=%d rebounds=%d\n",
		record.Stats["points"], record.Stats["assists"], record.Stats["steals"],
		record.Stats["blocks"], record.Stats["rebounds"])
	for _, d := range record.Detections {
		fmt.Printf("  %6.2fs frame %5d  %-24s %.3f  %s\n",
			d.Timestamp, d.Frame, d.Action, d.Confidence, d.ClassifiedAs)
	}
}
