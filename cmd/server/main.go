package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/hooptrack/hooptrack/internal/analysis"
	"github.com/hooptrack/hooptrack/internal/api"
	"github.com/hooptrack/hooptrack/internal/classifier"
	"github.com/hooptrack/hooptrack/internal/config"
	"github.com/hooptrack/hooptrack/internal/database"
	"github.com/hooptrack/hooptrack/internal/evaluation"
	"github.com/hooptrack/hooptrack/internal/session"
	"github.com/hooptrack/hooptrack/internal/stats"
	"github.com/hooptrack/hooptrack/internal/storage"
	"github.com/hooptrack/hooptrack/internal/vision"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	uploadStorage, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		log.Fatal("Failed to initialize upload storage: ", err)
	}
	frameStore, err := storage.NewFrameStore(cfg.Storage.FramesDir)
	if err != nil {
		log.Fatal("Failed to initialize frame store: ", err)
	}

	db, err := database.NewDB(database.Config{
		Type:       cfg.Database.Type,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		Name:       cfg.Database.Name,
		SQLitePath: cfg.Database.SQLitePath,
	})
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	sessions, err := session.NewStore(cfg.Storage.DataDir + "/sessions.jsonl")
	if err != nil {
		log.Fatal("Failed to initialize session store: ", err)
	}

	registry := buildRegistry(cfg)
	factory := classifier.NewFactory(registry)
	engine := stats.NewEngine(stats.DefaultRules(cfg.Scoring))

	analysisService := analysis.NewService(
		factory, engine, frameStore, sessions, analysis.OpenFileSource, cfg.Analysis)

	history, err := evaluation.NewHistory(cfg.Eval.HistoryPath)
	if err != nil {
		log.Fatal("Failed to initialize evaluation history: ", err)
	}
	evalService := evaluation.NewService(
		evaluation.NewLoader(cfg.Eval.GroundTruthDir), sessions, history)

	app := &api.App{
		Storage:           uploadStorage,
		Frames:            frameStore,
		VideoRepo:         database.NewVideoRepository(db),
		Sessions:          sessions,
		Registry:          registry,
		Analysis:          analysisService,
		Evaluation:        evalService,
		MaxUploadSize:     cfg.Server.MaxUploadSize,
		DefaultClassifier: cfg.Analysis.DefaultClassifier,
		AutoEvaluate:      cfg.Eval.Auto,
	}

	router := api.NewRouter(app)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	log.Printf("Upload directory: %s", cfg.Storage.UploadDir)
	log.Printf("Database type: %s", cfg.Database.Type)
	log.Printf("Classifiers: %v", registry.Available())

	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		log.Fatal(err)
	}
}

// buildRegistry wires every available classifier. The registry is built once
// here and handed down; nothing else mutates it.
func buildRegistry(cfg *config.Config) *classifier.Registry {
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
	} else {
		log.Printf("OPENAI_API_KEY not set; caption classifier disabled")
	}

	return registry
}
