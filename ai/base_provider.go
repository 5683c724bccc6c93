// Base provider with shared logic for all AI providers
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ProviderAdapter defines provider-specific behavior that each provider must implement
type ProviderAdapter interface {
	// SetAuth sets provider-specific authentication on the HTTP request
	SetAuth(req *http.Request)

	// GetEndpointURL returns the full URL for the given endpoint
	GetEndpointURL(endpoint string) string
}

// BaseProvider contains shared logic and configuration for all AI providers
type BaseProvider struct {
	config     *AIConfig
	httpClient *http.Client
	baseURL    string
}

// NewBaseProvider creates a new BaseProvider with the given configuration
func NewBaseProvider(config *AIConfig, baseURL string, timeout time.Duration) BaseProvider {
	return BaseProvider{
		config:  config,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// MakeRequest performs an HTTP request with provider-specific authentication
func (b *BaseProvider) MakeRequest(ctx context.Context, adapter ProviderAdapter, endpoint string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := adapter.GetEndpointURL(endpoint)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	adapter.SetAuth(req)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// GetModelName returns the model name, using the default if not specified
func (b *BaseProvider) GetModelName(model, defaultModel string) string {
	if model == "" {
		if defaultModel != "" {
			return defaultModel
		}
		return b.config.DefaultModel
	}
	return model
}

// --- Shared structured-output prompt builders ---
//
// The prompts below always end with an explicit JSON schema instruction.
// Providers are asked to run in JSON mode (ChatRequest.JSONMode) so the
// response body is a single JSON object that can be unmarshalled directly
// into the matching Go struct, instead of parsed out of free prose.

const questionGenerationSchema = `Respond with ONLY a single JSON object, no prose, matching this shape exactly:
{
  "questions": [
    {"text": "...", "type": "technical|behavioral|situational|general", "difficulty": "easy|medium|hard", "ai_context": "..."}
  ],
  "rationale": "..."
}`

// BuildQuestionGenerationPrompt creates the prompt for generating the initial
// CV-grounded, type-mixed batch of interview questions.
func BuildQuestionGenerationPrompt(req *QuestionGenerationRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert interviewer generating a batch of interview questions.\n\n")
	fmt.Fprintf(&b, "Job Description:\n%s\n\n", req.JobDescription)
	if len(req.Requirements) > 0 {
		fmt.Fprintf(&b, "Requirements:\n- %s\n\n", strings.Join(req.Requirements, "\n- "))
	}
	if len(req.CVContext) > 0 {
		fmt.Fprintf(&b, "Relevant candidate CV excerpts:\n%s\n\n", strings.Join(req.CVContext, "\n---\n"))
	}
	if len(req.PriorQuestions) > 0 {
		b.WriteString("Already-asked questions (do not repeat these or close variants):\n")
		for _, q := range req.PriorQuestions {
			fmt.Fprintf(&b, "- [%s] %s\n", q.Type, q.Text)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Generate exactly %d distinct questions. Mix question types (technical, behavioral, situational, general) ", req.NumQuestions)
	b.WriteString("and ground at least some questions in the candidate's CV excerpts when available.\n\n")
	b.WriteString(questionGenerationSchema)
	return b.String()
}

const followUpSchema = `Respond with ONLY a single JSON object, no prose, matching this shape exactly:
{"text": "...", "type": "followup", "difficulty": "easy|medium|hard", "ai_context": "..."}`

// BuildFollowUpPrompt creates the prompt for a targeted follow-up question
// aimed at the candidate's weakest scoring axis.
func BuildFollowUpPrompt(req *FollowUpRequest) string {
	var guidance string
	switch req.WeakestAxis {
	case "relevance":
		guidance = "Ask for a concrete, specific example that directly answers what was originally asked."
	case "technical":
		guidance = "Ask for a concrete implementation detail that tests depth of technical understanding."
	case "confidence":
		guidance = "Ask about a time they applied this in practice, to gauge how comfortable they really are with it."
	case "communication":
		guidance = "Ask them to clarify or expand on a specific claim they made, as plainly as possible."
	default:
		guidance = "Ask a clarifying follow-up that digs deeper into their previous answer."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Job Description:\n%s\n\n", req.JobDescription)
	fmt.Fprintf(&b, "Original question: %s\n", req.OriginalQuestion)
	fmt.Fprintf(&b, "Candidate answer: %s\n\n", req.AnswerText)
	if len(req.CVContext) > 0 {
		fmt.Fprintf(&b, "Relevant candidate CV excerpts:\n%s\n\n", strings.Join(req.CVContext, "\n---\n"))
	}
	fmt.Fprintf(&b, "The candidate's weakest scored axis on this answer was %q. %s\n\n", req.WeakestAxis, guidance)
	b.WriteString(followUpSchema)
	return b.String()
}

const evaluationSchema = `Respond with ONLY a single JSON object, no prose, matching this shape exactly:
{"relevance_score": 0-100, "technical_score": 0-100, "communication_score": 0-100, "confidence_score": 0-100, "feedback": "..."}`

// BuildEvaluationPrompt creates the prompt for scoring a single answer on
// the four rubric axes: relevance, technical, communication, confidence.
func BuildEvaluationPrompt(req *EvaluationRequest) string {
	var b strings.Builder
	b.WriteString("You are an expert interview evaluator. Score the candidate's answer objectively against a fixed rubric.\n\n")
	fmt.Fprintf(&b, "Job Description:\n%s\n\n", req.JobDescription)
	fmt.Fprintf(&b, "Question (%s): %s\n", req.QuestionType, req.QuestionText)
	fmt.Fprintf(&b, "Answer: %s\n\n", req.AnswerText)
	if len(req.CVContext) > 0 {
		fmt.Fprintf(&b, "Relevant candidate CV excerpts:\n%s\n\n", strings.Join(req.CVContext, "\n---\n"))
	}
	b.WriteString(`Score each axis 0-100:
- relevance_score: does the answer address what was actually asked
- technical_score: depth and correctness of technical content
- communication_score: clarity and structure of the answer
- confidence_score: how assured and concrete the answer reads

`)
	b.WriteString(evaluationSchema)
	return b.String()
}

// StricterRetryPrompt wraps a prompt with an explicit correction instruction,
// used for the single bounded retry after an invalid structured response.
func StricterRetryPrompt(original string) string {
	return "Your previous response was not valid JSON matching the required schema. " +
		"Respond again, and this time output ONLY the raw JSON object with no markdown fences, " +
		"no commentary, and no trailing text.\n\n" + original
}

// ExtractJSONObject strips common wrapping (markdown code fences, leading/
// trailing prose) that chat models add around an otherwise valid JSON object.
func ExtractJSONObject(content string) string {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
