package proctoring

import (
	"math"
	"testing"
	"time"
)

func TestRiskScorer_WeightsAndNormalizer(t *testing.T) {
	scorer := NewRiskScorer(100.0)

	scorer.Record(Alert{Level: LevelCritical, Confidence: 1.0, FiredAt: time.Now()})
	// 15 * 1.0 / 100 = 0.15 -> low
	if got := scorer.Score(); math.Abs(got-0.15) > 1e-9 {
		t.Errorf("expected score 0.15, got %v", got)
	}
	if got := scorer.Level(); got != "low" {
		t.Errorf("expected low, got %s", got)
	}

	scorer.Record(Alert{Level: LevelCritical, Confidence: 1.0, FiredAt: time.Now()})
	// (15+15)/100 = 0.30 -> medium
	if got := scorer.Level(); got != "medium" {
		t.Errorf("expected medium, got %s", got)
	}

	scorer.Record(Alert{Level: LevelCritical, Confidence: 1.0, FiredAt: time.Now()})
	// 45/100 = 0.45 -> high
	if got := scorer.Level(); got != "high" {
		t.Errorf("expected high, got %s", got)
	}

	for i := 0; i < 2; i++ {
		scorer.Record(Alert{Level: LevelCritical, Confidence: 1.0, FiredAt: time.Now()})
	}
	// 75/100 = 0.75 -> critical
	if got := scorer.Level(); got != "critical" {
		t.Errorf("expected critical, got %s", got)
	}
}

func TestRiskScorer_Monotonic(t *testing.T) {
	scorer := NewRiskScorer(100.0)
	last := scorer.Score()
	alerts := []Alert{
		{Level: LevelLow, Confidence: 1.0},
		{Level: LevelMedium, Confidence: 0.8},
		{Level: LevelHigh, Confidence: 0.6},
		{Level: LevelCritical, Confidence: 0.4},
	}
	for _, a := range alerts {
		scorer.Record(a)
		got := scorer.Score()
		if got < last {
			t.Fatalf("risk score decreased: %v -> %v", last, got)
		}
		last = got
	}
}

func TestRiskScorer_DefaultsNormalizer(t *testing.T) {
	scorer := NewRiskScorer(0)
	scorer.Record(Alert{Level: LevelLow, Confidence: 1.0})
	if got := scorer.Score(); math.Abs(got-0.01) > 1e-9 {
		t.Errorf("expected default normalizer of 100, got score %v", got)
	}
}

func TestLevelForScore_Buckets(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.0, "low"},
		{0.19, "low"},
		{0.2, "medium"},
		{0.39, "medium"},
		{0.4, "high"},
		{0.69, "high"},
		{0.7, "critical"},
		{5.0, "critical"},
	}
	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
