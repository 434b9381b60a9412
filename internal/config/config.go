package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config carries every tunable of the service. Values come from defaults,
// an optional config.yaml in the working directory, and environment
// variables (dots become underscores, e.g. ANALYSIS_CLIP_DURATION).
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
	Scoring  ScoringConfig
	OpenAI   OpenAIConfig
	Eval     EvalConfig
}

type ServerConfig struct {
	Port          string
	MaxUploadSize int64
}

type StorageConfig struct {
	UploadDir string
	FramesDir string
	DataDir   string
}

type DatabaseConfig struct {
	Type       string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SQLitePath string
}

// AnalysisConfig controls clip windowing and the detection gate.
type AnalysisConfig struct {
	ClipDuration       float64
	ClipOverlap        float64
	MaxClips           int
	DetectionThreshold float64
	DefaultClassifier  string
}

// ScoringConfig holds the per-rule confidence gates of the stats engine.
type ScoringConfig struct {
	ShotThreshold   float64
	AssistThreshold float64
	BlockThreshold  float64
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	FramesPerClip  int
	FrameSize      int
	TimeoutSeconds int
}

type EvalConfig struct {
	GroundTruthDir string
	HistoryPath    string
	Auto           bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_upload_size", 104857600)

	v.SetDefault("storage.upload_dir", "./uploads")
	v.SetDefault("storage.frames_dir", "./data/frames")
	v.SetDefault("storage.data_dir", "./data")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "hooptrack")
	v.SetDefault("database.password", "hooptrack_dev")
	v.SetDefault("database.name", "hooptrack")
	v.SetDefault("database.sqlite_path", "./hooptrack.db")

	v.SetDefault("analysis.clip_duration", 2.0)
	v.SetDefault("analysis.clip_overlap", 0.5)
	v.SetDefault("analysis.max_clips", 30)
	v.SetDefault("analysis.detection_threshold", 0.3)
	v.SetDefault("analysis.default_classifier", "trajectory")

	v.SetDefault("scoring.shot_threshold", 0.5)
	v.SetDefault("scoring.assist_threshold", 0.4)
	v.SetDefault("scoring.block_threshold", 0.45)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.frames_per_clip", 4)
	v.SetDefault("openai.frame_size", 512)
	v.SetDefault("openai.timeout_seconds", 30)

	v.SetDefault("eval.ground_truth_dir", "./ground_truth")
	v.SetDefault("eval.history_path", "./data/evaluations.jsonl")
	v.SetDefault("eval.auto", true)
}

// Load reads config.yaml if present and overlays environment variables.
// A missing config file is not an error; a malformed one is.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:          v.GetString("server.port"),
			MaxUploadSize: v.GetInt64("server.max_upload_size"),
		},
		Storage: StorageConfig{
			UploadDir: v.GetString("storage.upload_dir"),
			FramesDir: v.GetString("storage.frames_dir"),
			DataDir:   v.GetString("storage.data_dir"),
		},
		Database: DatabaseConfig{
			Type:       v.GetString("database.type"),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			Name:       v.GetString("database.name"),
			SQLitePath: v.GetString("database.sqlite_path"),
		},
		Analysis: AnalysisConfig{
			ClipDuration:       v.GetFloat64("analysis.clip_duration"),
			ClipOverlap:        v.GetFloat64("analysis.clip_overlap"),
			MaxClips:           v.GetInt("analysis.max_clips"),
			DetectionThreshold: v.GetFloat64("analysis.detection_threshold"),
			DefaultClassifier:  v.GetString("analysis.default_classifier"),
		},
		Scoring: ScoringConfig{
			ShotThreshold:   v.GetFloat64("scoring.shot_threshold"),
			AssistThreshold: v.GetFloat64("scoring.assist_threshold"),
			BlockThreshold:  v.GetFloat64("scoring.block_threshold"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         v.GetString("openai.api_key"),
			Model:          v.GetString("openai.model"),
			FramesPerClip:  v.GetInt("openai.frames_per_clip"),
			FrameSize:      v.GetInt("openai.frame_size"),
			TimeoutSeconds: v.GetInt("openai.timeout_seconds"),
		},
		Eval: EvalConfig{
			GroundTruthDir: v.GetString("eval.ground_truth_dir"),
			HistoryPath:    v.GetString("eval.history_path"),
			Auto:           v.GetBool("eval.auto"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Analysis.ClipDuration <= 0 {
		return fmt.Errorf("analysis.clip_duration must be positive, got %v", c.Analysis.ClipDuration)
	}
	if c.Analysis.ClipOverlap < 0 || c.Analysis.ClipOverlap >= 1 {
		return fmt.Errorf("analysis.clip_overlap must be in [0,1), got %v", c.Analysis.ClipOverlap)
	}
	if c.Analysis.MaxClips <= 0 {
		return fmt.Errorf("analysis.max_clips must be positive, got %d", c.Analysis.MaxClips)
	}
	return nil
}
