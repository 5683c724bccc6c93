// Heuristic fallback for answer evaluation, used when the model fails to
// produce a schema-valid score after the one stricter retry. Grounded on the
// same length/filler heuristics the rest of the pack falls back to when an
// LLM call can't be trusted blindly (see careerly-server's evaluateFallback).
package ai

import (
	"strings"
	"time"
)

// fillerWords mirrors the filler vocabulary the voice analyzer counts, kept
// local here so the evaluator's heuristic fallback doesn't need to import
// the voice package for a handful of string comparisons.
var fillerWords = []string{"um", "uh", "like", "you know", "so", "actually", "basically", "literally", "right"}

// HeuristicEvaluate produces a degraded-but-usable score when the model is
// unavailable or keeps failing schema validation. Per spec: length-based
// relevance, filler-penalized communication, neutral technical/confidence.
func HeuristicEvaluate(req *EvaluationRequest) *EvaluationResponse {
	words := strings.Fields(req.AnswerText)
	wordCount := len(words)

	relevance := lengthBasedScore(wordCount)
	communication := fillerPenalizedScore(strings.ToLower(req.AnswerText), wordCount)

	return &EvaluationResponse{
		RelevanceScore:     relevance,
		TechnicalScore:     50,
		CommunicationScore: communication,
		ConfidenceScore:    50,
		Feedback:           "Automated scoring was unavailable; this evaluation was produced by a length and clarity heuristic and should be treated as approximate.",
		Degraded:           true,
		Provider:           "heuristic",
		Model:              "heuristic-fallback-v1",
		Timestamp:          time.Now(),
	}
}

// lengthBasedScore rewards substantive answers without over-crediting mere
// verbosity: it plateaus well short of 100.
func lengthBasedScore(wordCount int) int {
	switch {
	case wordCount == 0:
		return 0
	case wordCount < 10:
		return 30
	case wordCount < 30:
		return 50
	case wordCount < 80:
		return 65
	default:
		return 70
	}
}

// fillerPenalizedScore starts from a length-based baseline and docks points
// per filler word, the same shape as the voice analyzer's confidence penalty.
func fillerPenalizedScore(lowerAnswer string, wordCount int) int {
	if wordCount == 0 {
		return 0
	}

	score := lengthBasedScore(wordCount)
	fillerCount := 0
	for _, f := range fillerWords {
		fillerCount += strings.Count(lowerAnswer, f)
	}

	penalty := fillerCount * 3
	if penalty > 30 {
		penalty = 30
	}
	score -= penalty

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
