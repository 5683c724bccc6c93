// API route definitions and HTTP server setup
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zidane0000/ai-interview-platform/coordinator"
	"github.com/zidane0000/ai-interview-platform/utils"
)

// SetupRouter initializes the HTTP routes for the API using chi, per spec
// §6's route table. coordinator is constructed and injected by main.go so
// it is built exactly once for the process's lifetime.
// frontendHandler is optional - if provided, serves SPA at root.
// authToken configures AuthMiddleware; empty disables auth (see config.Config.APIAuthToken).
func SetupRouter(c *coordinator.Coordinator, frontendHandler http.Handler, authToken string) http.Handler {
	deps := NewHandlerDependencies(c)

	r := chi.NewRouter()

	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(AuthMiddleware(authToken))

	// Health check endpoint at root (for load balancers)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok","service":"ai_interview_backend"}`)); err != nil {
			utils.Errorf("Failed to write health check response: %v", err)
		}
	})

	r.Route("/interviews", func(r chi.Router) {
		r.Post("/start", deps.StartInterviewHandler)
		r.Get("/{id}/questions", deps.GetQuestionsHandler)
		r.Post("/{id}/response", deps.SubmitResponseHandler)
		r.Post("/{id}/upload_audio", deps.UploadAudioHandler)
		r.Post("/{id}/complete", deps.CompleteInterviewHandler)
	})

	r.Route("/candidate", func(r chi.Router) {
		r.Post("/upload_cv", deps.UploadCVHandler)
	})

	r.Route("/monitoring", func(r chi.Router) {
		r.Post("/start/{id}", deps.MonitoringStartHandler)
		r.Post("/analyze/{id}", deps.MonitoringAnalyzeHandler)
		r.Get("/status/{id}", deps.MonitoringStatusHandler)
		r.Post("/stop/{id}", deps.MonitoringStopHandler)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/job/{job_id}", deps.JobReportHandler)
	})

	// Serve frontend SPA if handler provided (production mode)
	if frontendHandler != nil {
		r.Handle("/*", frontendHandler)
	}

	return r
}
