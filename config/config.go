// Configuration loading from environment variables and .env files
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/zidane0000/ai-interview-platform/utils"
)

// ProctorWeights holds the alert-level weights used by the risk score formula.
type ProctorWeights struct {
	Low      float64
	Medium   float64
	High     float64
	Critical float64
}

// ProctorThresholds holds the per-detection-type consecutive-frame thresholds
// and suppression windows from spec §4.5. Defaults match the spec's table.
type ProctorThresholds struct {
	GazeModerateFrames   int
	GazeModerateWindow   time.Duration
	GazeExtremeFrames    int
	GazeExtremeWindow    time.Duration
	FaceAbsentFrames     int
	FaceAbsentWindow     time.Duration
	MultiFaceFrames      int
	MultiFaceWindow      time.Duration
	CellPhoneFrames      int
	CellPhoneWindow      time.Duration
	LaptopBookFrames     int
	LaptopBookWindow     time.Duration
	AdditionalPersonFrames int
	AdditionalPersonWindow time.Duration
	MovementWindow       time.Duration
	ObjectConfidence     float64
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port            string
	ShutdownTimeout time.Duration

	// Database configuration
	DatabaseURL  string
	VectorStoreDSN string

	// AI service configuration
	GeminiAPIKey string
	OpenAIAPIKey string
	OpenAIBaseURL string
	GeminiBaseURL string

	// Embedding service configuration (RAG)
	EmbeddingBaseURL   string
	EmbeddingModel     string
	EmbeddingDimensions int

	// CV text extraction (Apache Tika) configuration
	TikaBaseURL string

	// Speech-to-text configuration
	STTBaseURL  string
	STTModel    string
	STTLanguage string

	// Object/face detection model handles. These are connection strings or
	// model identifiers for an external detection service; no model ships
	// in this repo (see DESIGN.md, Proctoring Engine).
	FaceMeshModelHandle string
	ObjectModelHandle   string

	// Scoring / proctoring configuration
	FollowUpThreshold float64
	ProctorWeights    ProctorWeights
	ProctorThresholds ProctorThresholds
	RiskNormalizer    float64

	// Voice analyzer configuration
	SilenceThresholdRMS float64
	FillerPenaltyCap    int
	PausePenaltyCap     int

	// External-call resilience
	ExternalCallTimeout time.Duration
	RetryMaxAttempts    int
	RetryBaseDelay      time.Duration
	RetryMaxDelay       time.Duration

	// APIAuthToken, when non-empty, is the bearer token the HTTP layer
	// requires on every route except /health. Left empty, auth is disabled
	// (local/dev use); see api.AuthMiddleware.
	APIAuthToken string

	// TODO: Add file upload configuration
	// TODO: Add security configuration
	// TODO: Add internationalization configuration
	// TODO: Add email/notification configuration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		VectorStoreDSN: utils.GetEnvString("VECTOR_STORE_DSN", os.Getenv("DATABASE_URL")),
		Port:           utils.GetEnvString("PORT", "8080"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: utils.GetEnvString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiBaseURL: utils.GetEnvString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		EmbeddingBaseURL:    utils.GetEnvString("EMBEDDING_BASE_URL", ""),
		EmbeddingModel:      utils.GetEnvString("EMBEDDING_MODEL", "local/sentence-384"),
		EmbeddingDimensions: utils.GetEnvInt("EMBEDDING_DIMENSIONS", 384),

		TikaBaseURL: utils.GetEnvString("TIKA_BASE_URL", "http://localhost:9998"),

		STTBaseURL:  utils.GetEnvString("STT_BASE_URL", "http://localhost:8081"),
		STTModel:    utils.GetEnvString("STT_MODEL", "base.en"),
		STTLanguage: utils.GetEnvString("STT_LANGUAGE", "en"),

		FaceMeshModelHandle: utils.GetEnvString("FACE_MESH_MODEL_HANDLE", ""),
		ObjectModelHandle:   utils.GetEnvString("OBJECT_MODEL_HANDLE", ""),

		FollowUpThreshold: utils.GetEnvFloat64("FOLLOWUP_THRESHOLD", 85.0),

		ProctorWeights: ProctorWeights{
			Low:      utils.GetEnvFloat64("PROCTOR_WEIGHT_LOW", 1),
			Medium:   utils.GetEnvFloat64("PROCTOR_WEIGHT_MEDIUM", 3),
			High:     utils.GetEnvFloat64("PROCTOR_WEIGHT_HIGH", 7),
			Critical: utils.GetEnvFloat64("PROCTOR_WEIGHT_CRITICAL", 15),
		},
		ProctorThresholds: ProctorThresholds{
			GazeModerateFrames:     utils.GetEnvInt("PROCTOR_GAZE_MODERATE_FRAMES", 9),
			GazeModerateWindow:     utils.GetEnvDuration("PROCTOR_GAZE_MODERATE_WINDOW", 5*time.Second),
			GazeExtremeFrames:      utils.GetEnvInt("PROCTOR_GAZE_EXTREME_FRAMES", 3),
			GazeExtremeWindow:      utils.GetEnvDuration("PROCTOR_GAZE_EXTREME_WINDOW", 3*time.Second),
			FaceAbsentFrames:       utils.GetEnvInt("PROCTOR_FACE_ABSENT_FRAMES", 30),
			FaceAbsentWindow:       utils.GetEnvDuration("PROCTOR_FACE_ABSENT_WINDOW", 10*time.Second),
			MultiFaceFrames:        utils.GetEnvInt("PROCTOR_MULTI_FACE_FRAMES", 10),
			MultiFaceWindow:        utils.GetEnvDuration("PROCTOR_MULTI_FACE_WINDOW", 10*time.Second),
			CellPhoneFrames:        utils.GetEnvInt("PROCTOR_CELL_PHONE_FRAMES", 5),
			CellPhoneWindow:        utils.GetEnvDuration("PROCTOR_CELL_PHONE_WINDOW", 10*time.Second),
			LaptopBookFrames:       utils.GetEnvInt("PROCTOR_LAPTOP_BOOK_FRAMES", 5),
			LaptopBookWindow:       utils.GetEnvDuration("PROCTOR_LAPTOP_BOOK_WINDOW", 10*time.Second),
			AdditionalPersonFrames: utils.GetEnvInt("PROCTOR_ADDITIONAL_PERSON_FRAMES", 5),
			AdditionalPersonWindow: utils.GetEnvDuration("PROCTOR_ADDITIONAL_PERSON_WINDOW", 10*time.Second),
			MovementWindow:         utils.GetEnvDuration("PROCTOR_MOVEMENT_WINDOW", 5*time.Second),
			ObjectConfidence:       utils.GetEnvFloat64("PROCTOR_OBJECT_CONFIDENCE", 0.5),
		},
		RiskNormalizer: utils.GetEnvFloat64("PROCTOR_RISK_NORMALIZER", 100.0),

		SilenceThresholdRMS: utils.GetEnvFloat64("VOICE_SILENCE_RMS", 300.0),
		FillerPenaltyCap:    utils.GetEnvInt("VOICE_FILLER_PENALTY_CAP", 30),
		PausePenaltyCap:     utils.GetEnvInt("VOICE_PAUSE_PENALTY_CAP", 20),

		ExternalCallTimeout: utils.GetEnvDuration("EXTERNAL_CALL_TIMEOUT", 20*time.Second),
		RetryMaxAttempts:    utils.GetEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:      utils.GetEnvDuration("RETRY_BASE_DELAY", 250*time.Millisecond),
		RetryMaxDelay:       utils.GetEnvDuration("RETRY_MAX_DELAY", 5*time.Second),

		ShutdownTimeout: utils.GetEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		APIAuthToken: utils.GetEnvString("API_AUTH_TOKEN", ""),
	}

	// TODO: Load file upload configuration(cfg.UploadPath, cfg.MaxFileSize)
	// TODO: Load security configuration(cfg.JWTSecret, cfg.CORSOrigins)
	// TODO: Validate email configuration if notifications are enabled
	// TODO: Load configuration from config files (YAML, JSON, TOML)
	// TODO: Add configuration hot-reloading capability

	return cfg, nil
}

// TODO: Add configuration for different environments (dev, staging, prod)
// TODO: Add configuration schema validation
// TODO: Add sensitive data masking in logs
