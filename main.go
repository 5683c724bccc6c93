// Entry point for the AI Interview Backend application
// Responsible for initializing configuration, database, router, and starting the server
package main

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zidane0000/ai-interview-platform/ai"
	"github.com/zidane0000/ai-interview-platform/api"
	"github.com/zidane0000/ai-interview-platform/config"
	"github.com/zidane0000/ai-interview-platform/coordinator"
	"github.com/zidane0000/ai-interview-platform/data"
	"github.com/zidane0000/ai-interview-platform/fusion"
	"github.com/zidane0000/ai-interview-platform/proctoring"
	"github.com/zidane0000/ai-interview-platform/rag"
	"github.com/zidane0000/ai-interview-platform/resilience"
	"github.com/zidane0000/ai-interview-platform/utils"
	"github.com/zidane0000/ai-interview-platform/voice"
)

//go:embed frontend/dist
var frontendFS embed.FS

// spaHandler serves the SPA (Single Page Application) with fallback to index.html
// This allows React Router to handle client-side routing
func spaHandler() http.Handler {
	// Get the frontend filesystem from the embedded FS
	frontendDist, err := fs.Sub(frontendFS, "frontend/dist")
	if err != nil {
		utils.Errorf("Failed to create frontend filesystem: %v", err)
		// Return a simple error handler
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Frontend not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(frontendDist))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")

		// Try to open the file
		_, err := frontendDist.Open(path)
		if err != nil {
			// File doesn't exist, serve index.html for SPA routing
			r.URL.Path = "/"
		}

		fileServer.ServeHTTP(w, r)
	})
}

// buildRAGIndex wires spec §6's CV-grounding pipeline: a Tika-backed text
// extractor, an embeddings provider (HTTP if EMBEDDING_BASE_URL is set,
// otherwise a local hash-based provider good enough for development), and a
// vector store (pgvector if VECTOR_STORE_DSN/DATABASE_URL is set, otherwise
// in-memory). A pgvector connection failure falls back to in-memory rather
// than failing startup outright.
func buildRAGIndex(ctx context.Context, cfg *config.Config) *rag.Index {
	extractor := rag.NewTikaExtractor(cfg.TikaBaseURL)

	var embeddings rag.EmbeddingsProvider
	if cfg.EmbeddingBaseURL != "" {
		embeddings = rag.NewHTTPProvider(cfg.EmbeddingBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	} else {
		embeddings = rag.NewLocalProvider()
	}

	var store rag.Store
	if cfg.VectorStoreDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.VectorStoreDSN)
		if err != nil {
			utils.Errorf("failed to connect vector store, falling back to in-memory: %v", err)
			store = rag.NewMemoryStore()
		} else {
			store = rag.NewPgvectorStore(pool)
		}
	} else {
		store = rag.NewMemoryStore()
	}

	return rag.NewIndex(extractor, embeddings, store)
}

// buildVoiceAnalyzer wires the whisper.cpp-backed transcription + answer
// scoring pipeline (spec §4.4), behind the resilience package's circuit
// breaker and retry primitives. The STT call is the only one wired through
// them: the LLM client has its own retry loop, and embeddings calls are not
// retried.
func buildVoiceAnalyzer(cfg *config.Config) *voice.Analyzer {
	stt := voice.NewWhisperProvider(cfg.STTBaseURL, voice.WithModel(cfg.STTModel), voice.WithLanguage(cfg.STTLanguage))
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "stt"})
	retryCfg := resilience.RetryConfig{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}
	return voice.NewAnalyzer(stt, cfg.SilenceThresholdRMS, cfg.FillerPenaltyCap, cfg.PausePenaltyCap, breaker, retryCfg)
}

// buildProctoringEngine wires the frame-analysis pipeline (spec §4.5) around
// the reference detector (see DESIGN.md, Proctoring Engine, for why no
// vendored model ships in this repo).
func buildProctoringEngine(cfg *config.Config) *proctoring.Engine {
	detector := proctoring.NewReferenceDetector()
	mover := proctoring.NewReferenceMovementEstimator()
	return proctoring.NewEngine(cfg.ProctorThresholds, cfg.RiskNormalizer, detector, detector, mover, proctoring.RealClock{}, false)
}

// gracefulShutdown handles graceful shutdown of the application
func gracefulShutdown(server *http.Server, timeout time.Duration) {
	// Create a channel to receive OS signals
	quit := make(chan os.Signal, 1)

	// Register the channel to receive specific signals
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	// Block until we receive a signal
	sig := <-quit
	utils.Errorf("Received signal: %v. Starting graceful shutdown...", sig)

	// Create a deadline to wait for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	// Attempt to gracefully shutdown the server
	if err := server.Shutdown(ctx); err != nil {
		utils.Errorf("Server forced to shutdown: %v", err)
		os.Exit(1) // Exit with error code 1
	}

	// Additional cleanup operations
	utils.Infof("Performing cleanup operations...")
	// Close database connections if available
	if data.GlobalStore != nil {
		if err := data.GlobalStore.Close(); err != nil {
			utils.Errorf("Error closing database connections: %v", err)
			os.Exit(2) // Exit with error code 2 for database cleanup failure
		}
	}

	utils.Infof("Graceful shutdown completed successfully")
}

func main() {
	// Load configuration
	utils.Infof("Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Errorf("failed to load config: %v", err)
		os.Exit(1)
	}

	// TODO: Initialize logging with proper configuration
	// TODO: Add structured logging with levels (debug, info, warn, error)
	// TODO: Add log rotation and file output options

	// Initialize hybrid store (auto-detects memory vs database backend)
	utils.Infof("Initializing data store...")
	err = data.InitGlobalStore()
	if err != nil {
		utils.Errorf("failed to initialize store: %v", err)
		os.Exit(1)
	}

	// Log the backend being used
	if data.GlobalStore.GetBackend() == data.BackendDatabase {
		utils.Infof("Using PostgreSQL database backend")
	} else {
		utils.Infof("Using in-memory store backend (set DATABASE_URL for database mode)")
	}
	// TODO: Add store health checks
	// if err := data.GlobalStore.Health(); err != nil {
	//     utils.Errorf("store health check failed: %v", err)
	// }

	// Wire the AI client, RAG index, voice analyzer, proctoring engine, and
	// fusion scorer that the Coordinator (spec §4.1) sits in front of. The
	// default provider follows whichever API key is actually configured,
	// falling back to the mock provider (always registered) for local dev.
	defaultProvider := ai.ProviderMock
	defaultModel := "mock-model"
	switch {
	case cfg.GeminiAPIKey != "":
		defaultProvider, defaultModel = ai.ProviderGemini, "gemini-1.5-flash"
	case cfg.OpenAIAPIKey != "":
		defaultProvider, defaultModel = ai.ProviderOpenAI, "gpt-4o-mini"
	}
	aiClient := ai.NewEnhancedAIClient(&ai.AIConfig{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		GeminiAPIKey:     cfg.GeminiAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		GeminiBaseURL:    cfg.GeminiBaseURL,
		DefaultProvider:  defaultProvider,
		DefaultModel:     defaultModel,
		MaxRetries:       cfg.RetryMaxAttempts,
		RequestTimeout:   cfg.ExternalCallTimeout,
		DefaultMaxTokens: 2048,
		DefaultTemp:      0.7,
	})

	ctx := context.Background()
	ragIndex := buildRAGIndex(ctx, cfg)
	voiceAnalyzer := buildVoiceAnalyzer(cfg)
	proctorEngine := buildProctoringEngine(cfg)
	fuser := fusion.NewFuser(aiClient)

	coord := coordinator.New(data.GlobalStore, aiClient, ragIndex, proctorEngine, voiceAnalyzer, fuser, cfg.FollowUpThreshold)

	// Set up router over the coordinator (includes API routes and frontend serving)
	frontendHandler := spaHandler()
	router := api.SetupRouter(coord, frontendHandler, cfg.APIAuthToken)
	// TODO: Add HTTPS support with TLS configuration
	// TODO: Add metrics and monitoring endpoints
	// TODO: Add API documentation serving (Swagger/OpenAPI)
	// Create HTTP server with security timeouts
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// Start server in a goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Errorf("Server failed to start: %v", err)
			os.Exit(1)
		}
	}()
	utils.Infof("Server successfully started on port %s", cfg.Port)
	utils.Infof("Frontend can now connect to: http://localhost:%s", cfg.Port)

	// Start graceful shutdown handler (this will block until shutdown signal)
	gracefulShutdown(server, cfg.ShutdownTimeout)
}
