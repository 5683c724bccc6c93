// OpenAI provider implementation
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OpenAIProvider implements the AIProvider interface for OpenAI API
type OpenAIProvider struct {
	BaseProvider
	apiKey string
}

// OpenAI API request/response structures
type openAIRequest struct {
	Model          string               `json:"model"`
	Messages       []openAIMessage      `json:"messages"`
	MaxTokens      int                  `json:"max_tokens,omitempty"`
	Temperature    float64              `json:"temperature,omitempty"`
	TopP           float64              `json:"top_p,omitempty"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Usage   openAIUsage    `json:"usage"`
	Choices []openAIChoice `json:"choices"`
	Error   *openAIError   `json:"error,omitempty"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, config *AIConfig) *OpenAIProvider {
	baseURL := "https://api.openai.com/v1"
	if config.OpenAIBaseURL != "" {
		baseURL = config.OpenAIBaseURL
	}
	return &OpenAIProvider{
		BaseProvider: NewBaseProvider(config, baseURL, config.RequestTimeout),
		apiKey:       apiKey,
	}
}

// SetAuth implements ProviderAdapter.
func (p *OpenAIProvider) SetAuth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
}

// GetEndpointURL implements ProviderAdapter.
func (p *OpenAIProvider) GetEndpointURL(endpoint string) string {
	return p.baseURL + endpoint
}

// GenerateResponse generates a chat completion using OpenAI API
func (p *OpenAIProvider) GenerateResponse(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	startTime := time.Now()

	openAIReq := &openAIRequest{
		Model:       p.GetModelName(req.Model, ""),
		Messages:    p.convertMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if req.JSONMode {
		openAIReq.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}

	respData, err := p.MakeRequest(ctx, p, "/chat/completions", openAIReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API request failed: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respData, &openAIResp); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		return nil, fmt.Errorf("OpenAI API error: %s (%s)", openAIResp.Error.Message, openAIResp.Error.Type)
	}

	if len(openAIResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from OpenAI")
	}

	choice := openAIResp.Choices[0]
	response := &ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		TokensUsed: TokenUsage{
			PromptTokens:     openAIResp.Usage.PromptTokens,
			CompletionTokens: openAIResp.Usage.CompletionTokens,
			TotalTokens:      openAIResp.Usage.TotalTokens,
		},
		Model:        openAIResp.Model,
		Provider:     ProviderOpenAI,
		ResponseTime: time.Since(startTime),
		Timestamp:    time.Now(),
		Metadata: map[string]interface{}{
			"id":      openAIResp.ID,
			"created": openAIResp.Created,
		},
	}

	return response, nil
}

// GetProviderName returns the provider name
func (p *OpenAIProvider) GetProviderName() string {
	return ProviderOpenAI
}

// GetSupportedModels returns list of supported OpenAI models
func (p *OpenAIProvider) GetSupportedModels() []string {
	return []string{
		"gpt-4",
		"gpt-4-turbo",
		"gpt-4-turbo-preview",
		"gpt-3.5-turbo",
		"gpt-3.5-turbo-16k",
	}
}

// ValidateCredentials validates the API key
func (p *OpenAIProvider) ValidateCredentials(ctx context.Context) error {
	testReq := &openAIRequest{
		Model: "gpt-3.5-turbo",
		Messages: []openAIMessage{
			{Role: "user", Content: "Hello"},
		},
		MaxTokens: 5,
	}

	_, err := p.MakeRequest(ctx, p, "/chat/completions", testReq)
	return err
}

// IsHealthy checks if the provider is healthy
func (p *OpenAIProvider) IsHealthy(ctx context.Context) bool {
	err := p.ValidateCredentials(ctx)
	return err == nil
}

// GetUsageStats returns usage statistics (placeholder)
func (p *OpenAIProvider) GetUsageStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"provider": ProviderOpenAI,
		"status":   "healthy",
	}, nil
}

// Helper methods

func (p *OpenAIProvider) convertMessages(messages []Message) []openAIMessage {
	converted := make([]openAIMessage, len(messages))
	for i, msg := range messages {
		converted[i] = openAIMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return converted
}
