// Client for communicating with AI service/model
package ai

import (
	"context"
	"fmt"
)

// AIClient provides a high-level interface for the AI operations the
// interview coordinator needs: question generation, follow-ups, and answer
// evaluation. All instances should be created through AIClientFactory.
type AIClient struct {
	enhancedClient *EnhancedAIClient
}

// GenerateInitialQuestions generates the CV-grounded initial question batch.
func (c *AIClient) GenerateInitialQuestions(ctx context.Context, req *QuestionGenerationRequest) (*QuestionGenerationResponse, error) {
	return c.enhancedClient.GenerateQuestions(ctx, req)
}

// GenerateFollowUpQuestion generates a single follow-up targeting the
// weakest scoring axis of a prior answer.
func (c *AIClient) GenerateFollowUpQuestion(ctx context.Context, req *FollowUpRequest) (*FollowUpResponse, error) {
	return c.enhancedClient.GenerateFollowUp(ctx, req)
}

// EvaluateAnswer scores a single candidate answer on the four rubric axes.
func (c *AIClient) EvaluateAnswer(ctx context.Context, req *EvaluationRequest) (*EvaluationResponse, error) {
	return c.enhancedClient.EvaluateAnswer(ctx, req)
}

// GetProviderInfo returns information about available AI providers
func (c *AIClient) GetProviderInfo() map[string]interface{} {
	info := make(map[string]interface{})
	providers := c.enhancedClient.GetAvailableProviders()

	for _, providerName := range providers {
		info[providerName] = GetProviderInfo(providerName)
	}

	return info
}

// SwitchProvider changes the active AI provider
func (c *AIClient) SwitchProvider(providerName string) error {
	c.enhancedClient.mu.Lock()
	defer c.enhancedClient.mu.Unlock()

	if _, exists := c.enhancedClient.providers[providerName]; !exists {
		return fmt.Errorf("provider not available: %s", providerName)
	}

	c.enhancedClient.config.DefaultProvider = providerName
	return nil
}

// GetCurrentProvider returns the currently configured AI provider
func (c *AIClient) GetCurrentProvider() string {
	return c.enhancedClient.config.DefaultProvider
}

// GetCurrentModel returns the currently configured AI model
func (c *AIClient) GetCurrentModel() string {
	return c.enhancedClient.config.DefaultModel
}

// IsHealthy reports whether at least one underlying provider is reachable.
func (c *AIClient) IsHealthy(ctx context.Context) bool {
	return c.enhancedClient.IsHealthy(ctx)
}
