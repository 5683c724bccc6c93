// Package fusion blends per-response scores, the final proctoring report,
// and the voice analyses collected during an interview into the closing
// artifact spec §4.7 describes: a final_score, a recommendation grade, and
// a one-paragraph narrative summary.
package fusion

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zidane0000/ai-interview-platform/ai"
	"github.com/zidane0000/ai-interview-platform/data"
	"github.com/zidane0000/ai-interview-platform/proctoring"
)

// axisNames are the four axes every Response is scored on.
const (
	axisRelevance     = "relevance"
	axisTechnical     = "technical"
	axisCommunication = "communication"
	axisConfidence    = "confidence"
)

// axisAlias maps a job's scoring_criteria key to the axis it drives, per
// spec §4.7's literal mapping table.
var axisAlias = map[string]string{
	"verbal cues":      axisCommunication,
	"communication":    axisCommunication,
	"content quality":  axisRelevance,
	"technical_skills": axisTechnical,
	"behavioral":       axisConfidence,
}

const (
	strengthFloor  = 80.0
	weaknessCeil   = 60.0
	gradeAFloor    = 85.0
	gradeBFloor    = 70.0
	gradeCFloor    = 55.0
)

// Report is the interview's closing artifact.
type Report struct {
	FinalScore  float64            `json:"final_score"`
	Grade       string             `json:"grade"`
	AxisScores  map[string]float64 `json:"axis_scores"`
	Strengths   []string           `json:"strengths"`
	Weaknesses  []string           `json:"weaknesses"`
	Summary     string             `json:"summary"`
	Proctoring  *proctoring.FinalReport `json:"proctoring_report,omitempty"`
}

// RankedInterview is one row of a job's comparative ranking.
type RankedInterview struct {
	InterviewID string    `json:"interview_id"`
	Candidate   string    `json:"candidate"`
	FinalScore  float64   `json:"final_score"`
	CompletedAt time.Time `json:"completed_at"`
}

// Fuser computes final reports, optionally grounding the narrative summary
// in an LLM call with a heuristic fallback (same retry-then-fallback
// discipline as the Answer Evaluator).
type Fuser struct {
	aiClient *ai.EnhancedAIClient
}

func NewFuser(aiClient *ai.EnhancedAIClient) *Fuser {
	return &Fuser{aiClient: aiClient}
}

// Compute blends responses against job's scoring_criteria and produces the
// final report. proctoringReport may be nil if monitoring was never started.
func (f *Fuser) Compute(ctx context.Context, job *data.Job, responses []*data.Response, proctoringReport *proctoring.FinalReport) (*Report, error) {
	axisScores := meanAxisScores(responses)
	weights := renormalizeWeights(job.ScoringCriteria)

	var finalScore float64
	for criterion, weight := range weights {
		axis, ok := axisAlias[strings.ToLower(criterion)]
		if !ok {
			continue
		}
		finalScore += axisScores[axis] * weight
	}

	strengths, weaknesses := classifyAxes(axisScores)
	grade := gradeFor(finalScore)

	summary, err := f.summarize(ctx, job, axisScores, finalScore, grade, strengths, weaknesses)
	if err != nil {
		summary = heuristicSummary(finalScore, grade, strengths, weaknesses)
	}

	return &Report{
		FinalScore: finalScore,
		Grade:      grade,
		AxisScores: axisScores,
		Strengths:  strengths,
		Weaknesses: weaknesses,
		Summary:    summary,
		Proctoring: proctoringReport,
	}, nil
}

// meanAxisScores averages each of the four axes across all responses. An
// interview with no responses yields all-zero axes.
func meanAxisScores(responses []*data.Response) map[string]float64 {
	scores := map[string]float64{
		axisRelevance:     0,
		axisTechnical:     0,
		axisCommunication: 0,
		axisConfidence:    0,
	}
	if len(responses) == 0 {
		return scores
	}

	var relevance, technical, communication, confidence float64
	for _, r := range responses {
		relevance += float64(r.RelevanceScore)
		technical += float64(r.TechnicalScore)
		communication += float64(r.CommunicationScore)
		confidence += float64(r.ConfidenceScore)
	}
	n := float64(len(responses))
	scores[axisRelevance] = relevance / n
	scores[axisTechnical] = technical / n
	scores[axisCommunication] = communication / n
	scores[axisConfidence] = confidence / n
	return scores
}

// renormalizeWeights drops any criterion fusion doesn't recognise and scales
// the rest so the remaining weights sum to 1 (spec §4.7: "Unmapped axes are
// ignored; weights of present axes are renormalised to sum to 1").
func renormalizeWeights(criteria data.FloatMap) map[string]float64 {
	var total float64
	present := make(map[string]float64)
	for criterion, weight := range criteria {
		if _, ok := axisAlias[strings.ToLower(criterion)]; !ok {
			continue
		}
		present[criterion] = weight
		total += weight
	}
	if total == 0 {
		return present
	}
	for criterion := range present {
		present[criterion] /= total
	}
	return present
}

// classifyAxes names axes at or above strengthFloor as strengths and axes
// below weaknessCeil as weaknesses, in a fixed, stable axis order.
func classifyAxes(axisScores map[string]float64) (strengths, weaknesses []string) {
	order := []string{axisRelevance, axisTechnical, axisCommunication, axisConfidence}
	for _, axis := range order {
		score := axisScores[axis]
		switch {
		case score >= strengthFloor:
			strengths = append(strengths, axis)
		case score < weaknessCeil:
			weaknesses = append(weaknesses, axis)
		}
	}
	return strengths, weaknesses
}

func gradeFor(finalScore float64) string {
	switch {
	case finalScore >= gradeAFloor:
		return "A"
	case finalScore >= gradeBFloor:
		return "B"
	case finalScore >= gradeCFloor:
		return "C"
	default:
		return "D"
	}
}

// summarize asks the LLM for a one-paragraph narrative grounded in the
// computed aggregates. Unlike question generation, there is no stricter
// retry here — a single failure falls straight to heuristicSummary, since a
// narrative paragraph has no structured schema worth re-prompting for.
func (f *Fuser) summarize(ctx context.Context, job *data.Job, axisScores map[string]float64, finalScore float64, grade string, strengths, weaknesses []string) (string, error) {
	if f.aiClient == nil {
		return "", fmt.Errorf("fusion: no AI client configured")
	}

	prompt := buildSummaryPrompt(job, axisScores, finalScore, grade, strengths, weaknesses)
	resp, err := f.aiClient.GenerateResponse(ctx, &ai.ChatRequest{
		Messages: []ai.Message{{Role: "user", Content: prompt, Timestamp: time.Now()}},
	})
	if err != nil {
		return "", err
	}
	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("fusion: model returned an empty summary")
	}
	return summary, nil
}

func buildSummaryPrompt(job *data.Job, axisScores map[string]float64, finalScore float64, grade string, strengths, weaknesses []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a one-paragraph hiring summary for a candidate interviewed for %q.\n", job.Title)
	fmt.Fprintf(&b, "Final score: %.1f (grade %s).\n", finalScore, grade)
	fmt.Fprintf(&b, "Axis scores: relevance=%.1f technical=%.1f communication=%.1f confidence=%.1f\n",
		axisScores[axisRelevance], axisScores[axisTechnical], axisScores[axisCommunication], axisScores[axisConfidence])
	if len(strengths) > 0 {
		fmt.Fprintf(&b, "Strengths: %s\n", strings.Join(strengths, ", "))
	}
	if len(weaknesses) > 0 {
		fmt.Fprintf(&b, "Weaknesses: %s\n", strings.Join(weaknesses, ", "))
	}
	b.WriteString("Ground every claim in the scores above. Do not invent specifics not implied by the numbers.")
	return b.String()
}

// heuristicSummary produces a deterministic paragraph from the aggregates
// alone, used whenever summarize fails (model unavailable, empty response).
func heuristicSummary(finalScore float64, grade string, strengths, weaknesses []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The candidate achieved a final score of %.1f, corresponding to grade %s.", finalScore, grade)
	if len(strengths) > 0 {
		fmt.Fprintf(&b, " Notable strengths include %s.", strings.Join(strengths, ", "))
	}
	if len(weaknesses) > 0 {
		fmt.Fprintf(&b, " Areas for improvement include %s.", strings.Join(weaknesses, ", "))
	}
	b.WriteString(" This summary was generated heuristically because the AI narrative service was unavailable.")
	return b.String()
}

// Rank orders a job's completed interviews by final_score descending, ties
// broken by earlier completed_at (spec §4.7).
func Rank(interviews []*data.Interview) []RankedInterview {
	ranked := make([]RankedInterview, 0, len(interviews))
	for _, iv := range interviews {
		if iv.FinalScore == nil {
			continue
		}
		var completedAt time.Time
		if iv.CompletedAt != nil {
			completedAt = *iv.CompletedAt
		}
		ranked = append(ranked, RankedInterview{
			InterviewID: iv.ID,
			Candidate:   iv.CandidateName,
			FinalScore:  *iv.FinalScore,
			CompletedAt: completedAt,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].FinalScore != ranked[j].FinalScore {
			return ranked[i].FinalScore > ranked[j].FinalScore
		}
		return ranked[i].CompletedAt.Before(ranked[j].CompletedAt)
	})

	return ranked
}
