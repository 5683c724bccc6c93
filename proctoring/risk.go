package proctoring

// Risk-level bucket boundaries (spec §4.5 step 5): low < 0.2, medium < 0.4,
// high < 0.7, otherwise critical.
const (
	riskLevelMediumFloor   = 0.2
	riskLevelHighFloor     = 0.4
	riskLevelCriticalFloor = 0.7
)

// alertWeight is the per-level multiplier in the risk-score formula (spec
// §4.5 step 5): "sum over fired alerts of weight(level) x confidence,
// divided by a configurable normalizer".
func alertWeight(level AlertLevel) float64 {
	switch level {
	case LevelLow:
		return 1
	case LevelMedium:
		return 3
	case LevelHigh:
		return 7
	case LevelCritical:
		return 15
	default:
		return 0
	}
}

// RiskScorer accumulates fired alerts into a monotonically non-decreasing
// risk score for the lifetime of one interview's monitoring session (spec
// §8: "risk score never decreases within a session").
type RiskScorer struct {
	normalizer float64
	raw        float64
}

func NewRiskScorer(normalizer float64) *RiskScorer {
	if normalizer <= 0 {
		normalizer = 100.0
	}
	return &RiskScorer{normalizer: normalizer}
}

// Record folds one newly fired alert into the running score.
func (r *RiskScorer) Record(a Alert) {
	r.raw += alertWeight(a.Level) * a.Confidence
}

// Score returns the current normalized risk score, uncapped above 1.0 by
// design: a heavily-flagged session should be distinguishable from a
// mildly-flagged one even past the "critical" bucket floor.
func (r *RiskScorer) Score() float64 {
	return r.raw / r.normalizer
}

// Level buckets the current score per spec §4.5 step 5.
func (r *RiskScorer) Level() string {
	return LevelForScore(r.Score())
}

// LevelForScore buckets an arbitrary score using the same thresholds Level
// applies to the scorer's own running total.
func LevelForScore(score float64) string {
	switch {
	case score < riskLevelMediumFloor:
		return "low"
	case score < riskLevelHighFloor:
		return "medium"
	case score < riskLevelCriticalFloor:
		return "high"
	default:
		return "critical"
	}
}
