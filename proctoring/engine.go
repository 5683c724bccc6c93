package proctoring

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zidane0000/ai-interview-platform/config"
	"github.com/zidane0000/ai-interview-platform/utils"
)

// ErrBadFrame is returned when a frame cannot be decoded at all; it does not
// advance the frame counter (spec §4.5: "a malformed frame must not corrupt
// the session's frame count or risk score").
var ErrBadFrame = errors.New("proctoring: bad frame")

// ErrUnknownSession is returned when analyze/status/stop is called for an
// interview that was never started (or was already stopped).
var ErrUnknownSession = errors.New("proctoring: unknown monitoring session")

// FrameResult is the outcome of analyzing a single frame.
type FrameResult struct {
	FrameNumber int     `json:"frame_number"`
	Detections  []Alert `json:"detections"`
	Warnings    []Alert `json:"warnings"`
	RiskScore   float64 `json:"risk_score"`
	RiskLevel   string  `json:"risk_level"`
}

// StatusResult is a read-only snapshot of a session's accumulated state.
type StatusResult struct {
	FrameCount     int     `json:"frame_count"`
	RiskScore      float64 `json:"risk_score"`
	RiskLevel      string  `json:"risk_level"`
	RecentWarnings []Alert `json:"recent_warnings"`
}

// FinalReport is returned by StopMonitoring: an aggregate summary of the
// whole session.
type FinalReport struct {
	TotalFrames int            `json:"total_frames"`
	Duration    time.Duration  `json:"duration"`
	FinalRisk   float64        `json:"final_risk_score"`
	FinalLevel  string         `json:"final_risk_level"`
	AlertCounts map[string]int `json:"alert_counts"`
	Timeline    []Alert        `json:"timeline"`
}

const recentWarningsLimit = 10

// session is one interview's in-memory monitoring state.
type session struct {
	mu         sync.Mutex
	states     map[DetectionType]*typeState
	risk       *RiskScorer
	frameCount int
	prevFrame  []byte
	timeline   []Alert
	startedAt  time.Time
}

func newSession(thresholds Thresholds, normalizer float64, now time.Time) *session {
	states := make(map[DetectionType]*typeState)
	for _, r := range rules(thresholds) {
		states[r.detectionType] = &typeState{rule: r}
	}
	return &session{
		states:    states,
		risk:      NewRiskScorer(normalizer),
		startedAt: now,
	}
}

// Engine is the per-interview-locked proctoring pipeline. One Engine serves
// every interview concurrently; each interview's monitoring state is
// isolated behind its own lock (spec §5: "operations on different
// interviews proceed independently").
type Engine struct {
	faces   FaceDetector
	objects ObjectDetector
	movers  MovementEstimator

	thresholds Thresholds
	normalizer float64
	clock      Clock

	// degraded is true when the detector backends failed to initialize;
	// in this mode every frame is reported unavailable rather than the
	// engine refusing to serve requests at all (spec §4.5: "if the
	// model fails to initialize, the whole engine degrades rather than
	// failing every call").
	degraded bool

	mu       sync.Mutex
	sessions map[string]*session
}

// NewEngine constructs an Engine. Pass nil detectors plus degraded=true to
// build a deliberately degraded engine (used when an external model
// backend failed to come up at startup).
func NewEngine(cfg config.ProctorThresholds, normalizer float64, faces FaceDetector, objects ObjectDetector, movers MovementEstimator, clock Clock, degraded bool) *Engine {
	if clock == nil {
		clock = RealClock{}
	}
	return &Engine{
		faces:   faces,
		objects: objects,
		movers:  movers,
		thresholds: Thresholds{
			GazeModerateFrames:     cfg.GazeModerateFrames,
			GazeModerateWindow:     cfg.GazeModerateWindow,
			GazeExtremeFrames:      cfg.GazeExtremeFrames,
			GazeExtremeWindow:      cfg.GazeExtremeWindow,
			FaceAbsentFrames:       cfg.FaceAbsentFrames,
			FaceAbsentWindow:       cfg.FaceAbsentWindow,
			MultiFaceFrames:        cfg.MultiFaceFrames,
			MultiFaceWindow:        cfg.MultiFaceWindow,
			CellPhoneFrames:        cfg.CellPhoneFrames,
			CellPhoneWindow:        cfg.CellPhoneWindow,
			LaptopBookFrames:       cfg.LaptopBookFrames,
			LaptopBookWindow:       cfg.LaptopBookWindow,
			AdditionalPersonFrames: cfg.AdditionalPersonFrames,
			AdditionalPersonWindow: cfg.AdditionalPersonWindow,
			MovementWindow:         cfg.MovementWindow,
			ObjectConfidence:       cfg.ObjectConfidence,
		},
		normalizer: normalizer,
		clock:      clock,
		degraded:   degraded,
		sessions:   make(map[string]*session),
	}
}

// StartMonitoring begins (or idempotently resumes) monitoring for an
// interview.
func (e *Engine) StartMonitoring(interviewID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[interviewID]; ok {
		return nil
	}
	e.sessions[interviewID] = newSession(e.thresholds, e.normalizer, e.clock.Now())
	utils.Infof("proctoring: started monitoring session=%s", interviewID)
	return nil
}

func (e *Engine) get(interviewID string) (*session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[interviewID]
	return s, ok
}

// AnalyzeFrame runs the detector pipeline over one frame and advances the
// interview's state machines, returning only newly fired alerts.
func (e *Engine) AnalyzeFrame(ctx context.Context, interviewID string, frame []byte) (*FrameResult, error) {
	if e.degraded {
		return &FrameResult{RiskLevel: "unavailable"}, nil
	}

	s, ok := e.get(interviewID)
	if !ok {
		return nil, ErrUnknownSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var faces []Face
	var objects []ObjectDetection
	var movement float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		faces, err = e.faces.DetectFaces(gctx, frame)
		return err
	})
	g.Go(func() error {
		var err error
		objects, err = e.objects.DetectObjects(gctx, frame)
		return err
	})
	g.Go(func() error {
		var err error
		movement, err = e.movers.EstimateMovement(gctx, frame, s.prevFrame)
		return err
	})

	if err := g.Wait(); err != nil {
		utils.Warningf("proctoring: bad frame session=%s: %v", interviewID, err)
		return nil, ErrBadFrame
	}

	s.prevFrame = frame
	s.frameCount++
	now := e.clock.Now()

	signal := Signal{FaceCount: len(faces)}
	if len(faces) == 1 {
		signal.GazeDeviation = EstimateGaze(faces[0]).Total
	}
	signal.ObjectConfidence = highestConfidencePerLabel(objects)
	signal.Movement = movement

	result := &FrameResult{FrameNumber: s.frameCount}

	for _, dt := range detectionOrder {
		st := s.states[dt]
		alert := st.evaluate(signal, e.thresholds, now)
		if alert == nil {
			continue
		}
		alert.FrameNumber = s.frameCount
		s.risk.Record(*alert)
		s.timeline = append(s.timeline, *alert)
		result.Detections = append(result.Detections, *alert)
	}

	result.RiskScore = s.risk.Score()
	result.RiskLevel = s.risk.Level()
	result.Warnings = recentWarnings(s.timeline)

	return result, nil
}

// detectionOrder fixes iteration order over the state-machine map so
// results are deterministic (map iteration in Go is randomized).
var detectionOrder = []DetectionType{
	TypeGazeModerate,
	TypeGazeExtreme,
	TypeFaceAbsent,
	TypeMultipleFaces,
	TypeCellPhone,
	TypeLaptopBook,
	TypeAdditionalPerson,
	TypeExcessiveMovement,
}

// highestConfidencePerLabel reduces a frame's object detections to the
// highest confidence seen for each distinct label, so each detection
// type's rule can be scoped to its own watch-list label(s) instead of
// reacting to whichever object happened to score highest in the frame.
func highestConfidencePerLabel(objects []ObjectDetection) map[string]float64 {
	if len(objects) == 0 {
		return nil
	}
	byLabel := make(map[string]float64, len(objects))
	for _, o := range objects {
		if o.Confidence > byLabel[o.Label] {
			byLabel[o.Label] = o.Confidence
		}
	}
	return byLabel
}

func recentWarnings(timeline []Alert) []Alert {
	if len(timeline) <= recentWarningsLimit {
		return append([]Alert(nil), timeline...)
	}
	return append([]Alert(nil), timeline[len(timeline)-recentWarningsLimit:]...)
}

// GetStatus returns a read-only snapshot of a session's accumulated state.
func (e *Engine) GetStatus(interviewID string) (*StatusResult, error) {
	if e.degraded {
		return &StatusResult{RiskLevel: "unavailable"}, nil
	}

	s, ok := e.get(interviewID)
	if !ok {
		return nil, ErrUnknownSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return &StatusResult{
		FrameCount:     s.frameCount,
		RiskScore:      s.risk.Score(),
		RiskLevel:      s.risk.Level(),
		RecentWarnings: recentWarnings(s.timeline),
	}, nil
}

// StopMonitoring ends a session and returns its final report, clearing the
// in-memory state.
func (e *Engine) StopMonitoring(interviewID string) (*FinalReport, error) {
	if e.degraded {
		return &FinalReport{FinalLevel: "unavailable", AlertCounts: map[string]int{}}, nil
	}

	e.mu.Lock()
	s, ok := e.sessions[interviewID]
	if ok {
		delete(e.sessions, interviewID)
	}
	e.mu.Unlock()

	if !ok {
		return nil, ErrUnknownSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, a := range s.timeline {
		counts[string(a.Type)]++
	}

	report := &FinalReport{
		TotalFrames: s.frameCount,
		Duration:    e.clock.Now().Sub(s.startedAt),
		FinalRisk:   s.risk.Score(),
		FinalLevel:  s.risk.Level(),
		AlertCounts: counts,
		Timeline:    append([]Alert(nil), s.timeline...),
	}
	utils.Infof("proctoring: stopped monitoring session=%s frames=%d risk=%.2f", interviewID, s.frameCount, report.FinalRisk)
	return report, nil
}
