// AI types and interfaces for LLM integration
package ai

import (
	"context"
	"time"
)

// Provider constants
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Message represents a chat message in the conversation
type Message struct {
	Role      string                 `json:"role"`      // "system", "user", "assistant"
	Content   string                 `json:"content"`   // Message content
	Metadata  map[string]interface{} `json:"metadata"`  // Additional metadata
	Timestamp time.Time              `json:"timestamp"` // When the message was created
}

// ChatRequest represents a raw request to the underlying model. Every
// structured operation (question generation, evaluation, follow-ups) is
// built on top of this.
type ChatRequest struct {
	Messages    []Message              `json:"messages"`   // Conversation history
	Model       string                 `json:"model"`       // Model to use
	MaxTokens   int                    `json:"max_tokens"`  // Maximum tokens in response
	Temperature float64                `json:"temperature"` // Randomness (0.0-1.0)
	TopP        float64                `json:"top_p"`        // Nucleus sampling
	JSONMode    bool                   `json:"json_mode"`    // Request a JSON-object response
	Context     map[string]interface{} `json:"context"`      // Additional context (e.g. provider override)
}

// ChatResponse represents a response from the AI
type ChatResponse struct {
	Content      string                 `json:"content"`       // Generated content
	FinishReason string                 `json:"finish_reason"` // Why generation stopped
	TokensUsed   TokenUsage             `json:"tokens_used"`   // Token consumption
	Model        string                 `json:"model"`         // Model used
	Provider     string                 `json:"provider"`      // Provider used
	Metadata     map[string]interface{} `json:"metadata"`      // Additional response data
	ResponseTime time.Duration          `json:"response_time"` // Time taken to generate
	Timestamp    time.Time              `json:"timestamp"`     // When response was generated
}

// TokenUsage represents token consumption metrics
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`     // Tokens in input
	CompletionTokens int `json:"completion_tokens"` // Tokens in output
	TotalTokens      int `json:"total_tokens"`      // Total tokens used
}

// EvaluationRequest represents a request to score a single candidate answer
// against a single question, grounded in the job and (optionally) CV context.
type EvaluationRequest struct {
	JobDescription string   `json:"job_description"`
	QuestionText   string   `json:"question_text"`
	QuestionType   string   `json:"question_type"`
	AnswerText     string   `json:"answer_text"`
	CVContext      []string `json:"cv_context"`    // Retrieved RAG chunks, if any
	PriorAnswers   []string `json:"prior_answers"` // Earlier answers in the interview, for consistency checks
}

// EvaluationResponse carries the four scoring axes the rest of the system
// is built on: relevance, technical, communication, confidence.
type EvaluationResponse struct {
	RelevanceScore     int        `json:"relevance_score"`     // 0-100
	TechnicalScore     int        `json:"technical_score"`     // 0-100
	CommunicationScore int        `json:"communication_score"` // 0-100
	ConfidenceScore    int        `json:"confidence_score"`    // 0-100
	Feedback           string     `json:"feedback"`
	Degraded           bool       `json:"degraded"` // true when produced by the heuristic fallback
	TokensUsed         TokenUsage `json:"tokens_used"`
	Provider           string     `json:"provider"`
	Model              string     `json:"model"`
	Timestamp          time.Time  `json:"timestamp"`
}

// Mean returns the simple average of the four axes, matching data.Response.Mean.
func (e *EvaluationResponse) Mean() float64 {
	return float64(e.RelevanceScore+e.TechnicalScore+e.CommunicationScore+e.ConfidenceScore) / 4.0
}

// PriorQuestion describes a question already asked in the interview, used to
// keep a generated batch distinct and appropriately type-mixed.
type PriorQuestion struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// QuestionGenerationRequest represents a request to generate the initial,
// CV-grounded batch of interview questions.
type QuestionGenerationRequest struct {
	JobDescription string          `json:"job_description"`
	Requirements   []string        `json:"requirements"`
	CVContext      []string        `json:"cv_context"` // Retrieved RAG chunks
	NumQuestions   int             `json:"num_questions"`
	PriorQuestions []PriorQuestion `json:"prior_questions"` // Already-asked questions to avoid repeating
}

// QuestionGenerationResponse represents generated interview questions
type QuestionGenerationResponse struct {
	Questions  []InterviewQuestion `json:"questions"`
	Rationale  string              `json:"rationale"`
	TokensUsed TokenUsage          `json:"tokens_used"`
	Provider   string              `json:"provider"`
	Model      string              `json:"model"`
	Timestamp  time.Time           `json:"timestamp"`
}

// InterviewQuestion represents a single interview question with metadata.
// Type and Difficulty mirror data.Question's enums.
type InterviewQuestion struct {
	Text       string `json:"text"`
	Type       string `json:"type"`       // technical, behavioral, situational, general, followup
	Difficulty string `json:"difficulty"` // easy, medium, hard
	AIContext  string `json:"ai_context"` // why the model chose this question
}

// FollowUpRequest asks the model for a single targeted follow-up question
// aimed at the weakest scoring axis of a just-evaluated answer.
type FollowUpRequest struct {
	JobDescription   string   `json:"job_description"`
	OriginalQuestion string   `json:"original_question"`
	AnswerText       string   `json:"answer_text"`
	WeakestAxis      string   `json:"weakest_axis"` // "relevance", "technical", "communication", "confidence"
	CVContext        []string `json:"cv_context"`
}

// FollowUpResponse wraps the generated follow-up question.
type FollowUpResponse struct {
	Question   InterviewQuestion `json:"question"`
	TokensUsed TokenUsage        `json:"tokens_used"`
	Provider   string            `json:"provider"`
	Model      string            `json:"model"`
	Timestamp  time.Time         `json:"timestamp"`
}

// AIProvider interface defines the contract for raw model access. Structured
// schema enforcement, retries and fallback are orchestrated one layer up in
// EnhancedAIClient so providers only need to speak ChatRequest/ChatResponse.
type AIProvider interface {
	GenerateResponse(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	GetProviderName() string
	GetSupportedModels() []string
	ValidateCredentials(ctx context.Context) error

	IsHealthy(ctx context.Context) bool
	GetUsageStats(ctx context.Context) (map[string]interface{}, error)
}

// AIConfig represents configuration for AI providers
type AIConfig struct {
	// API Keys
	OpenAIAPIKey string `json:"openai_api_key"`
	GeminiAPIKey string `json:"gemini_api_key"`

	// Custom endpoints (for OpenAI-compatible providers)
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`
	GeminiBaseURL string `json:"gemini_base_url,omitempty"`

	// Provider settings
	DefaultProvider string `json:"default_provider"`
	DefaultModel    string `json:"default_model"`

	// Request settings
	MaxRetries       int           `json:"max_retries"`
	RequestTimeout   time.Duration `json:"request_timeout"`
	DefaultMaxTokens int           `json:"default_max_tokens"`
	DefaultTemp      float64       `json:"default_temperature"`

	// Feature flags
	EnableCaching bool `json:"enable_caching"`
	EnableMetrics bool `json:"enable_metrics"`

	// Rate limiting
	RateLimitRPM int `json:"rate_limit_rpm"`
	RateLimitTPM int `json:"rate_limit_tpm"`

	// Costs and quotas
	DailyTokenLimit int     `json:"daily_token_limit"`
	CostPerToken    float64 `json:"cost_per_token"`
	MaxCostPerDay   float64 `json:"max_cost_per_day"`
}

// PromptTemplate represents a reusable prompt template
type PromptTemplate struct {
	Name        string            `json:"name"`
	Template    string            `json:"template"`
	Variables   []string          `json:"variables"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}
