package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hooptrack/hooptrack/internal/analysis"
	"github.com/hooptrack/hooptrack/internal/classifier"
	"github.com/hooptrack/hooptrack/internal/database"
	"github.com/hooptrack/hooptrack/internal/evaluation"
	"github.com/hooptrack/hooptrack/internal/models"
	"github.com/hooptrack/hooptrack/internal/session"
	"github.com/hooptrack/hooptrack/internal/storage"
)

// App bundles the service dependencies behind the HTTP surface.
type App struct {
	Storage       *storage.LocalStorage
	Frames        *storage.FrameStore
	VideoRepo     *database.VideoRepository
	Sessions      *session.Store
	Registry      *classifier.Registry
	Analysis      *analysis.Service
	Evaluation    *evaluation.Service
	MaxUploadSize int64

	DefaultClassifier string
	AutoEvaluate      bool
}

func (app *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (app *App) ListClassifiersHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"classifiers": app.Registry.List(),
	})
}

// AnalyzeHandler accepts a multipart video upload, runs the pipeline on it,
// and responds with the stored session record. When ground truth for the
// uploaded file name exists and auto-evaluation is on, the score is attached
// before responding; absent ground truth is silently skipped.
func (app *App) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "File too large")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No video file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") && contentType != "application/octet-stream" {
		if strings.ToLower(filepath.Ext(header.Filename)) != ".mp4" {
			respondError(w, http.StatusBadRequest, "Only video files are allowed")
			return
		}
		contentType = "video/mp4"
	}

	classifierID := r.FormValue("classifier")
	if classifierID == "" {
		classifierID = app.DefaultClassifier
	}
	if !app.Registry.IsRegistered(classifierID) {
		respondError(w, http.StatusBadRequest,
			"Invalid classifier: "+classifierID+". Available: "+strings.Join(app.Registry.Available(), ", "))
		return
	}

	filename, err := app.Storage.SaveFile(file, storage.FileInfo{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	})
	if err != nil {
		log.Printf("Failed to save upload: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	video := models.NewVideo(header.Filename, filename, contentType, header.Size)
	if err := app.VideoRepo.Insert(video); err != nil {
		log.Printf("Failed to catalog upload: %v", err)
		app.Storage.DeleteFile(filename)
		respondError(w, http.StatusInternalServerError, "Failed to save video information")
		return
	}

	videoPath, err := app.Storage.FullPath(filename)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve video path")
		return
	}

	record, err := app.Analysis.Analyze(videoPath, classifierID)
	if err != nil {
		log.Printf("Analysis failed for %s: %v", header.Filename, err)
		if errors.Is(err, classifier.ErrUnknown) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := app.VideoRepo.SetSession(video.ID, record.SessionID); err != nil {
		log.Printf("Failed to link session %s to video %s: %v", record.SessionID, video.ID, err)
	}

	if app.AutoEvaluate {
		if score, _, err := app.Evaluation.Run(header.Filename, record.SessionID); err == nil {
			record.Evaluation = score
			log.Printf("Auto-evaluation for %s: %.2f%%", record.SessionID, score.OverallScore)
		} else if !errors.Is(err, evaluation.ErrNoGroundTruth) {
			log.Printf("Auto-evaluation for %s failed: %v", record.SessionID, err)
		}
	}

	respondJSON(w, http.StatusOK, record)
}

func (app *App) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := app.Sessions.List()
	if err != nil {
		log.Printf("Failed to list sessions: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to load sessions")
		return
	}
	if sessions == nil {
		sessions = []models.SessionRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (app *App) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	record, err := app.Sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Session not found")
			return
		}
		log.Printf("Failed to load session %s: %v", sessionID, err)
		respondError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (app *App) GetDetectionImageHandler(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	f, err := app.Frames.OpenFrame(filename)
	if err != nil {
		respondError(w, http.StatusNotFound, "Image not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	io.Copy(w, f)
}

// EvaluateHandler scores a stored session against ground truth. The video
// name defaults to the original name of the upload linked to the session.
func (app *App) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	videoName := r.URL.Query().Get("video")
	if videoName == "" {
		respondError(w, http.StatusBadRequest, "Missing video query parameter")
		return
	}

	score, result, err := app.Evaluation.Run(videoName, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, evaluation.ErrNoGroundTruth):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, session.ErrNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		default:
			log.Printf("Evaluation of %s failed: %v", sessionID, err)
			respondError(w, http.StatusInternalServerError, "Evaluation failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"video_name": videoName,
		"score":      score,
		"result":     result,
	})
}

func (app *App) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := app.VideoRepo.List()
	if err != nil {
		log.Printf("Failed to list videos: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to load videos")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
