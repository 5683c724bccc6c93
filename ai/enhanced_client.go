// Enhanced AI client with support for multiple providers and structured,
// schema-enforced outputs.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zidane0000/ai-interview-platform/utils"
)

// ErrGenerationFailed is returned when a structured generation exhausts its
// retry budget without producing a schema-valid response and the operation
// has no heuristic fallback (question generation, follow-ups). Callers map
// this to a 502 GenerationFailed error per the API contract.
var ErrGenerationFailed = fmt.Errorf("ai: generation failed after retries")

// EnhancedAIClient provides a unified interface to multiple AI providers,
// plus the structured-output discipline every interview operation needs:
// one live attempt, one stricter retry, then either GenerationFailed or a
// heuristic fallback.
type EnhancedAIClient struct {
	config    *AIConfig
	providers map[string]AIProvider
	metrics   *AIMetrics
	cache     *ResponseCache
	mu        sync.RWMutex
}

// AIMetrics tracks usage and performance metrics
type AIMetrics struct {
	TotalRequests   int64                     `json:"total_requests"`
	SuccessfulReqs  int64                     `json:"successful_requests"`
	FailedRequests  int64                     `json:"failed_requests"`
	TotalTokensUsed int64                     `json:"total_tokens_used"`
	TotalCost       float64                   `json:"total_cost"`
	AvgResponseTime time.Duration             `json:"avg_response_time"`
	LastRequestTime time.Time                 `json:"last_request_time"`
	ProviderStats   map[string]*ProviderStats `json:"provider_stats"`
	mu              sync.RWMutex
}

// ProviderStats tracks metrics per provider
type ProviderStats struct {
	Requests   int64         `json:"requests"`
	Successes  int64         `json:"successes"`
	Failures   int64         `json:"failures"`
	TokensUsed int64         `json:"tokens_used"`
	Cost       float64       `json:"cost"`
	AvgLatency time.Duration `json:"avg_latency"`
	LastUsed   time.Time     `json:"last_used"`
}

// ResponseCache provides caching for AI responses
type ResponseCache struct {
	cache map[string]*CacheEntry
	mu    sync.RWMutex
}

// CacheEntry represents a cached response
type CacheEntry struct {
	Response  *ChatResponse `json:"response"`
	ExpiresAt time.Time     `json:"expires_at"`
	HitCount  int           `json:"hit_count"`
}

// NewEnhancedAIClient creates a new enhanced AI client
func NewEnhancedAIClient(config *AIConfig) *EnhancedAIClient {
	client := &EnhancedAIClient{
		config:    config,
		providers: make(map[string]AIProvider),
		metrics: &AIMetrics{
			ProviderStats: make(map[string]*ProviderStats),
		},
		cache: &ResponseCache{
			cache: make(map[string]*CacheEntry),
		},
	}

	if config.OpenAIAPIKey != "" {
		client.registerProvider(ProviderOpenAI, NewOpenAIProvider(config.OpenAIAPIKey, config))
	}
	if config.GeminiAPIKey != "" {
		client.registerProvider(ProviderGemini, NewGeminiProvider(config.GeminiAPIKey, config))
	}
	// Always register mock provider for fallback/testing
	client.registerProvider(ProviderMock, NewMockProvider())

	return client
}

// registerProvider registers a new AI provider
func (c *EnhancedAIClient) registerProvider(name string, provider AIProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.providers[name] = provider
	c.metrics.ProviderStats[name] = &ProviderStats{}
}

// GetProvider returns the specified provider or default
func (c *EnhancedAIClient) GetProvider(providerName string) (AIProvider, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if providerName == "" {
		providerName = c.config.DefaultProvider
	}

	provider, exists := c.providers[providerName]
	if !exists {
		return nil, fmt.Errorf("provider %s not found or not configured", providerName)
	}

	return provider, nil
}

// GenerateResponse generates a response using the configured provider, with
// caching, retry-with-backoff, and metrics around the raw model call.
func (c *EnhancedAIClient) GenerateResponse(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	startTime := time.Now()

	if c.config.EnableCaching {
		if cached := c.getCachedResponse(req); cached != nil {
			c.updateMetrics("cache_hit", startTime, nil, 0)
			return cached, nil
		}
	}

	var providerName string
	if v, ok := req.Context["provider"]; ok {
		if s, ok := v.(string); ok && s != "" {
			providerName = s
		}
	}
	provider, err := c.GetProvider(providerName)
	if err != nil {
		provider, err = c.GetProvider("")
		if err != nil {
			return nil, fmt.Errorf("no available AI provider: %w", err)
		}
	}

	if req.MaxTokens == 0 {
		req.MaxTokens = c.config.DefaultMaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = c.config.DefaultTemp
	}
	if req.Model == "" {
		req.Model = c.config.DefaultModel
	}

	var response *ChatResponse
	var lastErr error

	for i := 0; i <= c.config.MaxRetries; i++ {
		response, lastErr = provider.GenerateResponse(ctx, req)
		if lastErr == nil {
			break
		}
		if i < c.config.MaxRetries {
			backoffSeconds := 1
			for shift := 0; shift < i && shift < 10; shift++ {
				backoffSeconds *= 2
			}
			backoffDuration := time.Duration(backoffSeconds) * time.Second
			utils.Errorf("AI request failed (attempt %d/%d), retrying in %v: %v",
				i+1, c.config.MaxRetries+1, backoffDuration, lastErr)
			time.Sleep(backoffDuration)
		}
	}

	if lastErr != nil {
		c.updateMetrics("error", startTime, lastErr, 0)
		return nil, fmt.Errorf("AI request failed after %d retries: %w", c.config.MaxRetries, lastErr)
	}

	c.updateMetrics("success", startTime, nil, response.TokensUsed.TotalTokens)

	if c.config.EnableCaching {
		c.cacheResponse(req, response)
	}

	return response, nil
}

// generateStructured runs a JSON-mode prompt through GenerateResponse, then
// unmarshals the (possibly fenced) content into out. It does not retry by
// itself; callers apply the one-stricter-retry-then-fallback policy.
func (c *EnhancedAIClient) generateStructured(ctx context.Context, prompt string, out interface{}) error {
	req := &ChatRequest{
		Messages: []Message{{Role: "user", Content: prompt, Timestamp: time.Now()}},
		JSONMode: true,
	}

	resp, err := c.GenerateResponse(ctx, req)
	if err != nil {
		return err
	}

	raw := ExtractJSONObject(resp.Content)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("invalid structured response: %w", err)
	}
	return nil
}

// GenerateQuestions generates the initial, CV-grounded, type-mixed question
// batch. No free-form fallback exists for generation: after the single
// stricter retry, a persistent failure surfaces as ErrGenerationFailed.
func (c *EnhancedAIClient) GenerateQuestions(ctx context.Context, req *QuestionGenerationRequest) (*QuestionGenerationResponse, error) {
	prompt := BuildQuestionGenerationPrompt(req)

	var wire struct {
		Questions []InterviewQuestion `json:"questions"`
		Rationale string              `json:"rationale"`
	}

	err := c.generateStructured(ctx, prompt, &wire)
	if err != nil || len(wire.Questions) == 0 {
		err = c.generateStructured(ctx, StricterRetryPrompt(prompt), &wire)
	}
	if err != nil || len(wire.Questions) == 0 {
		if err == nil {
			err = fmt.Errorf("model returned zero questions")
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	provider, _ := c.GetProvider("")
	return &QuestionGenerationResponse{
		Questions: wire.Questions,
		Rationale: wire.Rationale,
		Provider:  provider.GetProviderName(),
		Model:     c.config.DefaultModel,
		Timestamp: time.Now(),
	}, nil
}

// GenerateFollowUp generates a single follow-up question targeting the
// weakest scoring axis. Same no-fallback discipline as GenerateQuestions.
func (c *EnhancedAIClient) GenerateFollowUp(ctx context.Context, req *FollowUpRequest) (*FollowUpResponse, error) {
	prompt := BuildFollowUpPrompt(req)

	var wire InterviewQuestion
	err := c.generateStructured(ctx, prompt, &wire)
	if err != nil || strings.TrimSpace(wire.Text) == "" {
		err = c.generateStructured(ctx, StricterRetryPrompt(prompt), &wire)
	}
	if err != nil || strings.TrimSpace(wire.Text) == "" {
		if err == nil {
			err = fmt.Errorf("model returned an empty follow-up question")
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	wire.Type = "followup"

	provider, _ := c.GetProvider("")
	return &FollowUpResponse{
		Question:  wire,
		Provider:  provider.GetProviderName(),
		Model:     c.config.DefaultModel,
		Timestamp: time.Now(),
	}, nil
}

// EvaluateAnswer scores a single answer on the four rubric axes. Unlike
// generation, evaluation has a heuristic fallback (ai/fallback.go) so a
// persistent model failure degrades gracefully instead of failing the
// whole request.
func (c *EnhancedAIClient) EvaluateAnswer(ctx context.Context, req *EvaluationRequest) (*EvaluationResponse, error) {
	prompt := BuildEvaluationPrompt(req)

	var wire struct {
		RelevanceScore     int    `json:"relevance_score"`
		TechnicalScore     int    `json:"technical_score"`
		CommunicationScore int    `json:"communication_score"`
		ConfidenceScore    int    `json:"confidence_score"`
		Feedback           string `json:"feedback"`
	}

	err := c.generateStructured(ctx, prompt, &wire)
	if err != nil || !validScores(wire.RelevanceScore, wire.TechnicalScore, wire.CommunicationScore, wire.ConfidenceScore) {
		err = c.generateStructured(ctx, StricterRetryPrompt(prompt), &wire)
	}
	if err != nil || !validScores(wire.RelevanceScore, wire.TechnicalScore, wire.CommunicationScore, wire.ConfidenceScore) {
		utils.Errorf("evaluation generation degraded to heuristic fallback: %v", err)
		return HeuristicEvaluate(req), nil
	}

	provider, _ := c.GetProvider("")
	return &EvaluationResponse{
		RelevanceScore:     wire.RelevanceScore,
		TechnicalScore:     wire.TechnicalScore,
		CommunicationScore: wire.CommunicationScore,
		ConfidenceScore:    wire.ConfidenceScore,
		Feedback:           wire.Feedback,
		Provider:           provider.GetProviderName(),
		Model:              c.config.DefaultModel,
		Timestamp:          time.Now(),
	}, nil
}

func validScores(scores ...int) bool {
	for _, s := range scores {
		if s < 0 || s > 100 {
			return false
		}
	}
	return true
}

// getCachedResponse retrieves a cached response if available and not expired
func (c *EnhancedAIClient) getCachedResponse(req *ChatRequest) *ChatResponse {
	if !c.config.EnableCaching {
		return nil
	}

	cacheKey := c.generateCacheKey(req)

	c.cache.mu.RLock()
	defer c.cache.mu.RUnlock()

	entry, exists := c.cache.cache[cacheKey]
	if !exists || time.Now().After(entry.ExpiresAt) {
		return nil
	}

	entry.HitCount++
	return entry.Response
}

// cacheResponse stores a response in the cache
func (c *EnhancedAIClient) cacheResponse(req *ChatRequest, response *ChatResponse) {
	if !c.config.EnableCaching {
		return
	}

	cacheKey := c.generateCacheKey(req)
	expiresAt := time.Now().Add(1 * time.Hour)

	c.cache.mu.Lock()
	defer c.cache.mu.Unlock()

	c.cache.cache[cacheKey] = &CacheEntry{
		Response:  response,
		ExpiresAt: expiresAt,
		HitCount:  0,
	}
}

// generateCacheKey creates a cache key for the request
func (c *EnhancedAIClient) generateCacheKey(req *ChatRequest) string {
	var keyParts []string
	keyParts = append(keyParts, req.Model)
	if req.JSONMode {
		keyParts = append(keyParts, "json")
	}

	if len(req.Messages) > 0 {
		content := req.Messages[0].Content
		if len(content) > 120 {
			content = content[:120]
		}
		keyParts = append(keyParts, "prompt:"+content)
		keyParts = append(keyParts, fmt.Sprintf("len:%d", len(req.Messages)))
	}

	cacheKey := strings.Join(keyParts, ":")
	cacheKey = strings.ReplaceAll(cacheKey, "\n", "\\n")
	cacheKey = strings.ReplaceAll(cacheKey, "\r", "\\r")

	return cacheKey
}

// updateMetrics updates client metrics
func (c *EnhancedAIClient) updateMetrics(eventType string, startTime time.Time, err error, tokensUsed int) {
	if !c.config.EnableMetrics {
		return
	}

	duration := time.Since(startTime)

	c.metrics.mu.Lock()
	defer c.metrics.mu.Unlock()

	c.metrics.TotalRequests++
	c.metrics.LastRequestTime = time.Now()

	if err != nil {
		c.metrics.FailedRequests++
	} else {
		c.metrics.SuccessfulReqs++
		c.metrics.TotalTokensUsed += int64(tokensUsed)
		c.metrics.TotalCost += float64(tokensUsed) * c.config.CostPerToken
	}

	if c.metrics.SuccessfulReqs > 0 {
		totalTime := time.Duration(c.metrics.SuccessfulReqs-1)*c.metrics.AvgResponseTime + duration
		c.metrics.AvgResponseTime = totalTime / time.Duration(c.metrics.SuccessfulReqs)
	}
	_ = eventType
}

// GetMetrics returns current client metrics
func (c *EnhancedAIClient) GetMetrics() *AIMetrics {
	c.metrics.mu.RLock()
	defer c.metrics.mu.RUnlock()

	return &AIMetrics{
		TotalRequests:   c.metrics.TotalRequests,
		SuccessfulReqs:  c.metrics.SuccessfulReqs,
		FailedRequests:  c.metrics.FailedRequests,
		TotalTokensUsed: c.metrics.TotalTokensUsed,
		TotalCost:       c.metrics.TotalCost,
		AvgResponseTime: c.metrics.AvgResponseTime,
		LastRequestTime: c.metrics.LastRequestTime,
		ProviderStats:   make(map[string]*ProviderStats),
	}
}

// IsHealthy checks if the client and providers are healthy
func (c *EnhancedAIClient) IsHealthy(ctx context.Context) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, provider := range c.providers {
		if provider.IsHealthy(ctx) {
			return true
		}
	}

	return false
}

// GetAvailableProviders returns list of available providers
func (c *EnhancedAIClient) GetAvailableProviders() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	providers := make([]string, 0, len(c.providers))
	for name := range c.providers {
		providers = append(providers, name)
	}

	return providers
}
