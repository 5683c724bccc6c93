package voice

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/zidane0000/ai-interview-platform/resilience"
	"github.com/zidane0000/ai-interview-platform/utils"
)

const (
	bytesPerSample = 2 // 16-bit signed PCM
	windowMs       = 20
	// minPauseWindows is the minimum number of consecutive silent windows
	// (at windowMs each) needed to count as a pause rather than a normal
	// inter-phoneme gap. 100ms.
	minPauseWindows = 5
)

// Analysis is the structured output of one answer's voice analysis (spec
// §4.6).
type Analysis struct {
	Transcript      string  `json:"transcript"`
	WordCount       int     `json:"word_count"`
	DurationSeconds float64 `json:"duration_seconds"`
	PaceWPM         float64 `json:"pace_wpm"`
	FillerCount     int     `json:"filler_count"`
	PauseCount      int     `json:"pause_count"`
	ClarityScore    int     `json:"clarity_score"`
	ConfidenceScore int     `json:"confidence_score"`
	Degraded        bool    `json:"degraded"`
	Summary         string  `json:"summary"`
}

// Analyzer runs the decode -> transcribe -> score pipeline for one answer's
// audio.
type Analyzer struct {
	stt                 Provider
	silenceThresholdRMS float64
	fillerPenaltyCap    int
	pausePenaltyCap     int
	breaker             *resilience.CircuitBreaker
	retryCfg            resilience.RetryConfig
}

func NewAnalyzer(stt Provider, silenceThresholdRMS float64, fillerPenaltyCap, pausePenaltyCap int, breaker *resilience.CircuitBreaker, retryCfg resilience.RetryConfig) *Analyzer {
	return &Analyzer{
		stt:                 stt,
		silenceThresholdRMS: silenceThresholdRMS,
		fillerPenaltyCap:    fillerPenaltyCap,
		pausePenaltyCap:     pausePenaltyCap,
		breaker:             breaker,
		retryCfg:            retryCfg,
	}
}

// Analyze converts the given audio to the target format, transcribes it,
// and computes the full scored Analysis. A transcription failure degrades
// the result (empty transcript, Degraded=true) rather than propagating an
// error — downstream the evaluator's own communication score is used alone
// (spec §4.6).
func (a *Analyzer) Analyze(ctx context.Context, pcm []byte, sampleRate, channels int) (*Analysis, error) {
	target, err := ToTargetFormat(pcm, sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("voice: %w", err)
	}

	durationSeconds := float64(len(target)) / float64(TargetSampleRate*bytesPerSample)

	var transcript string
	callErr := resilience.Retry(ctx, a.retryCfg, "voice.transcribe", func() error {
		run := func() error {
			text, err := a.stt.Transcribe(ctx, target)
			if err != nil {
				return err
			}
			transcript = text
			return nil
		}
		if a.breaker != nil {
			return a.breaker.Execute(run)
		}
		return run()
	})

	if callErr != nil {
		utils.Warningf("voice: transcription failed, falling back to degraded analysis: %v", callErr)
		return &Analysis{
			Transcript:      "",
			DurationSeconds: durationSeconds,
			Degraded:        true,
			Summary:         "Voice analysis unavailable: transcription failed.",
		}, nil
	}

	pauseCount := countPauses(target, a.silenceThresholdRMS)
	return a.score(transcript, durationSeconds, pauseCount), nil
}

func (a *Analyzer) score(transcript string, durationSeconds float64, pauseCount int) *Analysis {
	words := strings.Fields(transcript)
	wordCount := len(words)
	fillerCount := countFillers(transcript)

	durationMinutes := durationSeconds / 60
	var pace float64
	if durationMinutes > 0 {
		pace = float64(wordCount) / durationMinutes
	}

	clarity := clarityScore(wordCount, vocabularyRichness(words))
	confidence := confidenceScore(pace, pauseCount, fillerCount, a.pausePenaltyCap, a.fillerPenaltyCap)

	return &Analysis{
		Transcript:      transcript,
		WordCount:       wordCount,
		DurationSeconds: durationSeconds,
		PaceWPM:         pace,
		FillerCount:     fillerCount,
		PauseCount:      pauseCount,
		ClarityScore:    clarity,
		ConfidenceScore: confidence,
		Summary:         summarize(wordCount, pace, fillerCount, pauseCount, clarity, confidence),
	}
}

// clarityScore implements spec §4.6's clarity formula.
func clarityScore(wordCount int, richness float64) int {
	score := 70
	switch {
	case wordCount >= 50:
		score += 15
	case wordCount >= 20:
		score += 10
	case wordCount >= 10:
		score += 5
	}
	switch {
	case richness > 0.7:
		score += 15
	case richness > 0.5:
		score += 10
	}
	return clamp(score)
}

// confidenceScore implements spec §4.6's confidence formula.
func confidenceScore(pace float64, pauseCount, fillerCount, pausePenaltyCap, fillerPenaltyCap int) int {
	score := 70

	// Boundary note: pace==120 lands in the +10 "near-optimal" bucket, not
	// the +20 "optimal" one, per spec §8 scenario 6's literal worked
	// example (70 + 10 - 24 = 56 at pace_wpm=120) — the band's lower edge
	// is open, matching that scenario over the prose range notation.
	switch {
	case pace > 120 && pace <= 160:
		score += 20
	case (pace >= 100 && pace <= 120) || (pace > 160 && pace <= 180):
		score += 10
	}
	if pace < 80 || pace > 200 {
		score -= 10
	}

	pausePenalty := pauseCount * 2
	if pausePenalty > pausePenaltyCap {
		pausePenalty = pausePenaltyCap
	}
	score -= pausePenalty

	fillerPenalty := fillerCount * 3
	if fillerPenalty > fillerPenaltyCap {
		fillerPenalty = fillerPenaltyCap
	}
	score -= fillerPenalty

	return clamp(score)
}

func vocabularyRichness(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[strings.ToLower(strings.Trim(w, ".,!?;:\"'"))] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// countPauses segments target-format PCM into fixed windows, classifies
// each as silent/non-silent by RMS energy, and counts interior silent runs
// (leading/trailing silence around the whole clip is not a "pause").
func countPauses(pcm []byte, thresholdRMS float64) int {
	windowBytes := TargetSampleRate * bytesPerSample * windowMs / 1000
	if windowBytes <= 0 {
		return 0
	}

	var silentRun int
	var speechStarted bool
	pauses := 0

	flush := func() {
		if speechStarted && silentRun >= minPauseWindows {
			pauses++
		}
		silentRun = 0
	}

	for i := 0; i+windowBytes <= len(pcm); i += windowBytes {
		window := pcm[i : i+windowBytes]
		if rms(window) < thresholdRMS {
			silentRun++
			continue
		}
		// non-silent window: close out any pending interior silent run
		flush()
		speechStarted = true
	}

	return pauses
}

func rms(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sample := int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8)
		v := float64(sample)
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

func summarize(wordCount int, pace float64, fillerCount, pauseCount, clarity, confidence int) string {
	return fmt.Sprintf(
		"Spoke %d words at %.0f words/minute with %d filler word(s) and %d notable pause(s). Clarity %d/100, confidence %d/100.",
		wordCount, pace, fillerCount, pauseCount, clarity, confidence,
	)
}
