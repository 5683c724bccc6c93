// Google Gemini provider implementation
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GeminiProvider implements the AIProvider interface for Google Gemini API
type GeminiProvider struct {
	BaseProvider
	apiKey string
}

// Gemini API structures
type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
	SafetySettings   []geminiSafety   `json:"safetySettings,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64  `json:"temperature,omitempty"`
	TopP            float64  `json:"topP,omitempty"`
	TopK            int      `json:"topK,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type geminiSafety struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata"`
	Error         *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content       geminiContent        `json:"content"`
	FinishReason  string               `json:"finishReason"`
	Index         int                  `json:"index"`
	SafetyRatings []geminiSafetyRating `json:"safetyRatings"`
}

type geminiSafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(apiKey string, config *AIConfig) *GeminiProvider {
	baseURL := "https://generativelanguage.googleapis.com/v1beta"
	if config.GeminiBaseURL != "" {
		baseURL = config.GeminiBaseURL
	}
	return &GeminiProvider{
		BaseProvider: NewBaseProvider(config, baseURL, config.RequestTimeout),
		apiKey:       apiKey,
	}
}

// SetAuth implements ProviderAdapter. Gemini authenticates via an API key
// query parameter instead of an Authorization header, so this is a no-op.
func (p *GeminiProvider) SetAuth(req *http.Request) {}

// GetEndpointURL implements ProviderAdapter.
func (p *GeminiProvider) GetEndpointURL(endpoint string) string {
	return p.baseURL + endpoint + "?key=" + p.apiKey
}

// GenerateResponse generates a chat completion using Gemini API
func (p *GeminiProvider) GenerateResponse(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	startTime := time.Now()

	genConfig := &geminiGenConfig{
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		MaxOutputTokens: req.MaxTokens,
	}
	if req.JSONMode {
		genConfig.ResponseMIMEType = "application/json"
	}

	geminiReq := &geminiRequest{
		Contents:         p.convertMessages(req.Messages),
		GenerationConfig: genConfig,
		SafetySettings:   p.getDefaultSafetySettings(),
	}

	model := p.GetModelName(req.Model, "gemini-1.5-flash")
	endpoint := fmt.Sprintf("/models/%s:generateContent", model)

	respData, err := p.MakeRequest(ctx, p, endpoint, geminiReq)
	if err != nil {
		return nil, fmt.Errorf("Gemini API request failed: %w", err)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respData, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	if geminiResp.Error != nil {
		return nil, fmt.Errorf("Gemini API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code)
	}

	if len(geminiResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := geminiResp.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no content parts in Gemini response")
	}

	content := candidate.Content.Parts[0].Text

	var tokensUsed TokenUsage
	if geminiResp.UsageMetadata != nil {
		tokensUsed = TokenUsage{
			PromptTokens:     geminiResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: geminiResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      geminiResp.UsageMetadata.TotalTokenCount,
		}
	}

	response := &ChatResponse{
		Content:      content,
		FinishReason: candidate.FinishReason,
		TokensUsed:   tokensUsed,
		Model:        model,
		Provider:     ProviderGemini,
		ResponseTime: time.Since(startTime),
		Timestamp:    time.Now(),
		Metadata: map[string]interface{}{
			"index":          candidate.Index,
			"safety_ratings": candidate.SafetyRatings,
		},
	}

	return response, nil
}

// GetProviderName returns the provider name
func (p *GeminiProvider) GetProviderName() string {
	return ProviderGemini
}

// GetSupportedModels returns list of supported Gemini models
func (p *GeminiProvider) GetSupportedModels() []string {
	return []string{
		"gemini-1.5-pro",
		"gemini-1.5-flash",
		"gemini-pro",
	}
}

// ValidateCredentials validates the API key
func (p *GeminiProvider) ValidateCredentials(ctx context.Context) error {
	testReq := &geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{
					{Text: "Hello"},
				},
			},
		},
		GenerationConfig: &geminiGenConfig{
			MaxOutputTokens: 5,
		},
	}

	model := p.GetModelName("", "gemini-1.5-flash")
	endpoint := fmt.Sprintf("/models/%s:generateContent", model)
	_, err := p.MakeRequest(ctx, p, endpoint, testReq)
	return err
}

// IsHealthy checks if the provider is healthy
func (p *GeminiProvider) IsHealthy(ctx context.Context) bool {
	err := p.ValidateCredentials(ctx)
	return err == nil
}

// GetUsageStats returns usage statistics (placeholder)
func (p *GeminiProvider) GetUsageStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"provider": ProviderGemini,
		"status":   "healthy",
	}, nil
}

// Helper methods

func (p *GeminiProvider) convertMessages(messages []Message) []geminiContent {
	var contents []geminiContent

	for _, msg := range messages {
		role := msg.Role
		if role == "assistant" {
			role = "model"
		}
		if role == "system" {
			continue
		}

		content := geminiContent{
			Parts: []geminiPart{
				{Text: msg.Content},
			},
			Role: role,
		}
		contents = append(contents, content)
	}

	var systemMessages []string
	for _, msg := range messages {
		if msg.Role == "system" {
			systemMessages = append(systemMessages, msg.Content)
		}
	}

	if len(systemMessages) > 0 && len(contents) > 0 {
		systemPrompt := strings.Join(systemMessages, "\n\n")
		contents[0].Parts[0].Text = systemPrompt + "\n\n" + contents[0].Parts[0].Text
	}

	return contents
}

func (p *GeminiProvider) getDefaultSafetySettings() []geminiSafety {
	return []geminiSafety{
		{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
		{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
		{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
		{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	}
}

