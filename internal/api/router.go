package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", app.HealthHandler)
	r.Get("/classifiers", app.ListClassifiersHandler)

	r.Post("/analyze", app.AnalyzeHandler)

	r.Get("/detections", app.ListSessionsHandler)
	r.Get("/detections/{sessionID}", app.GetSessionHandler)
	r.Get("/detections/image/{filename}", app.GetDetectionImageHandler)
	r.Post("/detections/{sessionID}/evaluate", app.EvaluateHandler)

	r.Get("/videos", app.ListVideosHandler)

	return r
}
