package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/zidane0000/ai-interview-platform/resilience"
)

type stubProvider struct {
	transcript string
	err        error
}

func (s *stubProvider) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	return s.transcript, s.err
}

func silentPCM(durationSeconds float64) []byte {
	n := int(durationSeconds * TargetSampleRate)
	return make([]byte, n*bytesPerSample)
}

func testRetryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

// TestAnalyze_FillerHeavyScenario mirrors spec §8 scenario 6: word_count
// 120 over 60s duration -> pace 120 wpm; 8 filler occurrences ->
// confidence_score = 70 + 10 - 24 = 56; clarity_score = 70 + 15 (>=50
// words) + richness bonus.
func TestAnalyze_FillerHeavyScenario(t *testing.T) {
	fillers := []string{"um", "uh", "like", "so", "actually", "basically", "literally", "right"}
	var words []string
	for i := 0; i < 112; i++ {
		words = append(words, fmt.Sprintf("topic%d", i))
	}
	words = append(words, fillers...)
	transcript := strings.Join(words, " ")

	provider := &stubProvider{transcript: transcript}
	analyzer := NewAnalyzer(provider, 300.0, 30, 20, nil, testRetryConfig())

	pcm := silentPCM(60)
	result, err := analyzer.Analyze(context.Background(), pcm, TargetSampleRate, TargetChannels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.WordCount != 120 {
		t.Fatalf("expected word_count 120, got %d", result.WordCount)
	}
	if result.PaceWPM != 120 {
		t.Fatalf("expected pace_wpm 120, got %v", result.PaceWPM)
	}
	if result.FillerCount != 8 {
		t.Fatalf("expected filler_count 8, got %d", result.FillerCount)
	}
	if result.ConfidenceScore != 56 {
		t.Errorf("expected confidence_score 56, got %d", result.ConfidenceScore)
	}
	if result.ClarityScore < 95 {
		t.Errorf("expected clarity_score >= 95 (70+15+10or15), got %d", result.ClarityScore)
	}
}

func TestAnalyze_TranscriptionFailureDegrades(t *testing.T) {
	provider := &stubProvider{err: errors.New("stt unavailable")}
	analyzer := NewAnalyzer(provider, 300.0, 30, 20, nil, testRetryConfig())

	result, err := analyzer.Analyze(context.Background(), silentPCM(5), TargetSampleRate, TargetChannels)
	if err != nil {
		t.Fatalf("transcription failure must not propagate as an error, got %v", err)
	}
	if !result.Degraded {
		t.Error("expected Degraded=true")
	}
	if result.Transcript != "" {
		t.Errorf("expected empty transcript, got %q", result.Transcript)
	}
}

func TestClarityScore_Buckets(t *testing.T) {
	tests := []struct {
		wordCount int
		richness  float64
		want      int
	}{
		{5, 0.9, 85},   // 70 + 0 + 15
		{10, 0.9, 90},  // 70 + 5 + 15
		{20, 0.6, 90},  // 70 + 10 + 10
		{50, 0.3, 85},  // 70 + 15 + 0
		{50, 0.9, 100}, // 70 + 15 + 15
	}
	for _, tt := range tests {
		if got := clarityScore(tt.wordCount, tt.richness); got != tt.want {
			t.Errorf("clarityScore(%d, %v) = %d, want %d", tt.wordCount, tt.richness, got, tt.want)
		}
	}
}

func TestConfidenceScore_PaceBoundaryMatchesScenario(t *testing.T) {
	// pace exactly 120: scenario 6 requires the +10 bucket, not +20.
	if got := confidenceScore(120, 0, 0, 20, 30); got != 80 {
		t.Errorf("expected 80 (70+10) at pace=120, got %d", got)
	}
	// just above 120: the +20 optimal bucket.
	if got := confidenceScore(121, 0, 0, 20, 30); got != 90 {
		t.Errorf("expected 90 (70+20) at pace=121, got %d", got)
	}
	// extreme pace penalty.
	if got := confidenceScore(250, 0, 0, 20, 30); got != 60 {
		t.Errorf("expected 60 (70-10) at pace=250, got %d", got)
	}
}

func TestConfidenceScore_PenaltyCaps(t *testing.T) {
	// 20 pauses * 2 = 40, capped at 20.
	got := confidenceScore(140, 20, 0, 20, 30)
	if got != 70 { // 70 + 20 (optimal pace) - 20 (capped pause penalty) = 70
		t.Errorf("expected 70, got %d", got)
	}
}
