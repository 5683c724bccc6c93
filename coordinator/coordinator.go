// Package coordinator is the single per-interview entry point (spec §4.1):
// it owns interview lifecycle, routes per-answer events to the question,
// evaluation, proctoring, and voice pipelines, and persists their results.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zidane0000/ai-interview-platform/ai"
	"github.com/zidane0000/ai-interview-platform/data"
	"github.com/zidane0000/ai-interview-platform/fusion"
	"github.com/zidane0000/ai-interview-platform/proctoring"
	"github.com/zidane0000/ai-interview-platform/rag"
	"github.com/zidane0000/ai-interview-platform/utils"
	"github.com/zidane0000/ai-interview-platform/voice"
)

// Error kinds signalled abstractly per spec §7, mapped to HTTP status at the
// API boundary.
var (
	ErrNotFound       = errors.New("coordinator: entity not found")
	ErrNotInProgress  = errors.New("coordinator: interview is not in progress")
	ErrUnknownQuestion = errors.New("coordinator: question does not belong to interview")
	ErrGenerationFailed = errors.New("coordinator: generation failed")
	ErrValidationFailed = errors.New("coordinator: validation failed")
)

const numInitialQuestions = 5

// Coordinator is the single entry point for every per-interview operation.
// A per-interview mutex (spec §5: "the proctoring state per interview is
// read-write by exactly one executor at a time") guards the mutable
// session-level race (idempotent question generation, follow-up insertion).
type Coordinator struct {
	store             *data.HybridStore
	aiClient          *ai.EnhancedAIClient
	index             *rag.Index // nil when RAG is unavailable; CV grounding is then skipped
	proctor           *proctoring.Engine
	voiceAnalyzer     *voice.Analyzer
	fuser             *fusion.Fuser
	followUpThreshold float64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(store *data.HybridStore, aiClient *ai.EnhancedAIClient, index *rag.Index, proctor *proctoring.Engine, voiceAnalyzer *voice.Analyzer, fuser *fusion.Fuser, followUpThreshold float64) *Coordinator {
	return &Coordinator{
		store:             store,
		aiClient:          aiClient,
		index:             index,
		proctor:           proctor,
		voiceAnalyzer:     voiceAnalyzer,
		fuser:             fuser,
		followUpThreshold: followUpThreshold,
		locks:             make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex dedicated to interviewID, creating it on first
// use. Different interviews never contend with each other (spec §5).
func (c *Coordinator) lockFor(interviewID string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	l, ok := c.locks[interviewID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[interviewID] = l
	}
	return l
}

// StartInterview creates an Interview in pending status, bound to job_id.
func (c *Coordinator) StartInterview(ctx context.Context, jobID, candidateName, candidateEmail, candidatePhone string) (*data.Interview, error) {
	if _, err := c.store.GetJob(jobID); err != nil {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	if candidateName == "" {
		return nil, fmt.Errorf("%w: candidate name is required", ErrValidationFailed)
	}

	interview := &data.Interview{
		ID:             data.GenerateID(),
		JobID:          jobID,
		CandidateName:  candidateName,
		CandidateEmail: candidateEmail,
		CandidatePhone: candidatePhone,
		Status:         data.InterviewStatusPending,
	}
	if err := c.store.CreateInterview(interview); err != nil {
		return nil, fmt.Errorf("coordinator: create interview: %w", err)
	}
	return interview, nil
}

// UploadCV ingests a CV into the interview's RAG namespace. An unsupported
// file format is returned as an error wrapping rag.ErrUnsupportedFormat; any
// other failed ingest is recorded as a warning, not an error: the interview
// proceeds without CV grounding (spec §4.2 / §7: IndexUnavailable,
// CVUnavailable are non-fatal).
func (c *Coordinator) UploadCV(ctx context.Context, interviewID, fileName string, fileData []byte) (indexed bool, warning string, err error) {
	if _, getErr := c.store.GetInterview(interviewID); getErr != nil {
		return false, "", fmt.Errorf("%w: interview %s", ErrNotFound, interviewID)
	}

	if c.index == nil {
		return false, "CV indexing is unavailable; proceeding without CV grounding", nil
	}

	if err := c.index.IngestCV(ctx, interviewID, fileName, fileData); err != nil {
		if errors.Is(err, rag.ErrUnsupportedFormat) {
			return false, "", fmt.Errorf("%w: interview %s", err, interviewID)
		}
		utils.Warningf("coordinator: CV ingest degraded for interview %s: %v", interviewID, err)
		return false, fmt.Sprintf("CV grounding unavailable: %v", err), nil
	}

	return true, "", nil
}

// GenerateInitialQuestions is idempotent: if questions already exist for
// this interview, the existing set is returned unchanged (spec §4.1).
func (c *Coordinator) GenerateInitialQuestions(ctx context.Context, interviewID string) ([]*data.Question, error) {
	lock := c.lockFor(interviewID)
	lock.Lock()
	defer lock.Unlock()

	interview, err := c.store.GetInterview(interviewID)
	if err != nil {
		return nil, fmt.Errorf("%w: interview %s", ErrNotFound, interviewID)
	}

	existing, err := c.store.ListQuestionsByInterview(interviewID)
	if err != nil {
		return nil, fmt.Errorf("coordinator: list questions: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	job, err := c.store.GetJob(interview.JobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, interview.JobID)
	}

	var cvContext []string
	if c.index != nil {
		if chunks, retrieveErr := c.index.Retrieve(ctx, interviewID, job.Description, 5); retrieveErr == nil {
			for _, sc := range chunks {
				cvContext = append(cvContext, sc.Chunk.Content)
			}
		}
	}

	genResp, err := c.aiClient.GenerateQuestions(ctx, &ai.QuestionGenerationRequest{
		JobDescription: job.Description,
		Requirements:   splitRequirements(job.Requirements),
		CVContext:      cvContext,
		NumQuestions:   numInitialQuestions,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	questions := make([]*data.Question, 0, len(genResp.Questions))
	for i, q := range genResp.Questions {
		questions = append(questions, &data.Question{
			ID:          data.GenerateID(),
			InterviewID: interviewID,
			Text:        q.Text,
			Type:        validatedQuestionType(q.Type),
			Difficulty:  data.GetValidatedDifficulty(q.Difficulty),
			OrderIndex:  i + 1,
			IsFollowup:  false,
			AIContext:   q.AIContext,
		})
	}

	if err := c.store.CreateQuestions(questions); err != nil {
		return nil, fmt.Errorf("coordinator: persist questions: %w", err)
	}
	return questions, nil
}

func validatedQuestionType(t string) string {
	if data.ValidateQuestionType(t) {
		return t
	}
	return data.QuestionTypeGeneral
}

func splitRequirements(requirements string) []string {
	if requirements == "" {
		return nil
	}
	return []string{requirements}
}

// SubmissionResult is the outcome of SubmitResponse.
type SubmissionResult struct {
	Response *data.Response
	Followup *data.Question
}

// SubmitResponse persists the Response, evaluates it, and appends a
// follow-up question when the mean score falls below the threshold (spec
// §4.1, §4.4). Idempotent per (interview_id, question_id): a re-submission
// overwrites the prior response in place and re-evaluates.
func (c *Coordinator) SubmitResponse(ctx context.Context, interviewID, questionID, answerText string, audioRef []byte, audioSampleRate, audioChannels int) (*SubmissionResult, error) {
	lock := c.lockFor(interviewID)
	lock.Lock()
	defer lock.Unlock()

	interview, err := c.store.GetInterview(interviewID)
	if err != nil {
		return nil, fmt.Errorf("%w: interview %s", ErrNotFound, interviewID)
	}
	if interview.Status == data.InterviewStatusCompleted || interview.Status == data.InterviewStatusCancelled {
		return nil, fmt.Errorf("%w: interview %s", ErrNotInProgress, interviewID)
	}

	question, err := c.store.GetQuestion(questionID)
	if err != nil || question.InterviewID != interviewID {
		return nil, fmt.Errorf("%w: question %s", ErrUnknownQuestion, questionID)
	}

	if interview.Status == data.InterviewStatusPending {
		now := time.Now()
		if err := c.store.UpdateInterview(interviewID, map[string]interface{}{
			"status":     data.InterviewStatusInProgress,
			"started_at": &now,
		}); err != nil {
			return nil, fmt.Errorf("coordinator: transition interview to in_progress: %w", err)
		}
	}

	job, err := c.store.GetJob(interview.JobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, interview.JobID)
	}

	var cvContext []string
	if c.index != nil {
		if chunks, retrieveErr := c.index.Retrieve(ctx, interviewID, answerText, 5); retrieveErr == nil {
			for _, sc := range chunks {
				cvContext = append(cvContext, sc.Chunk.Content)
			}
		}
	}

	evalResp, err := c.aiClient.EvaluateAnswer(ctx, &ai.EvaluationRequest{
		JobDescription: job.Description,
		QuestionText:   question.Text,
		QuestionType:   question.Type,
		AnswerText:     answerText,
		CVContext:      cvContext,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	communicationScore := evalResp.CommunicationScore
	var voiceBlob data.JSONBlob
	var durationSeconds float64
	if len(audioRef) > 0 && c.voiceAnalyzer != nil {
		analysis, voiceErr := c.voiceAnalyzer.Analyze(ctx, audioRef, audioSampleRate, audioChannels)
		if voiceErr != nil {
			utils.Warningf("coordinator: voice analysis failed for response to %s: %v", questionID, voiceErr)
		} else {
			if !analysis.Degraded {
				communicationScore = int((float64(evalResp.CommunicationScore) + float64(analysis.ClarityScore)) / 2)
			}
			voiceBlob = voiceAnalysisBlob(analysis)
			durationSeconds = analysis.DurationSeconds
		}
	}

	existing, _ := c.store.GetResponseByInterviewAndQuestion(interviewID, questionID)
	responseID := data.GenerateID()
	if existing != nil {
		responseID = existing.ID
	}

	response := &data.Response{
		ID:                          responseID,
		InterviewID:                 interviewID,
		QuestionID:                  questionID,
		AnswerText:                  answerText,
		AnswerDurationSeconds:       durationSeconds,
		RelevanceScore:              evalResp.RelevanceScore,
		TechnicalScore:              evalResp.TechnicalScore,
		CommunicationScore:          communicationScore,
		EvaluatorCommunicationScore: evalResp.CommunicationScore,
		ConfidenceScore:             evalResp.ConfidenceScore,
		AIFeedback:                  evalResp.Feedback,
		VoiceAnalysis:               voiceBlob,
	}
	if err := c.store.UpsertResponse(response); err != nil {
		return nil, fmt.Errorf("coordinator: persist response: %w", err)
	}

	result := &SubmissionResult{Response: response}

	mean := response.Mean()
	if mean < c.followUpThreshold {
		followup, followupErr := c.maybeAppendFollowup(ctx, interview, job, question, response)
		if followupErr != nil {
			utils.Warningf("coordinator: follow-up generation failed for %s: %v", questionID, followupErr)
		} else {
			result.Followup = followup
		}
	}

	return result, nil
}

// AttachAudio runs voice analysis against an existing Response's answer and
// folds the clarity score into its stored communication score (spec §6:
// `POST /interviews/{id}/upload_audio` attaches audio to a response already
// created by submit_response).
func (c *Coordinator) AttachAudio(ctx context.Context, interviewID, questionID string, audioRef []byte, sampleRate, channels int) (*voice.Analysis, error) {
	if c.voiceAnalyzer == nil {
		return nil, fmt.Errorf("%w: voice analysis is not configured", ErrGenerationFailed)
	}

	lock := c.lockFor(interviewID)
	lock.Lock()
	defer lock.Unlock()

	response, err := c.store.GetResponseByInterviewAndQuestion(interviewID, questionID)
	if err != nil || response == nil {
		return nil, fmt.Errorf("%w: no response for question %s", ErrUnknownQuestion, questionID)
	}

	analysis, err := c.voiceAnalyzer.Analyze(ctx, audioRef, sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if !analysis.Degraded {
		// Re-derive from the pristine evaluator score, not whatever is
		// currently stored in CommunicationScore: a repeat AttachAudio call
		// (or one following submit_response's own inline audio_ref) must
		// recompute the blend rather than compound onto an already-blended
		// value.
		response.CommunicationScore = int((float64(response.EvaluatorCommunicationScore) + float64(analysis.ClarityScore)) / 2)
	}
	response.VoiceAnalysis = voiceAnalysisBlob(analysis)
	response.AnswerDurationSeconds = analysis.DurationSeconds

	if err := c.store.UpsertResponse(response); err != nil {
		return nil, fmt.Errorf("coordinator: persist voice analysis: %w", err)
	}
	return analysis, nil
}

// maybeAppendFollowup generates and appends a single follow-up question
// targeting the response's weakest axis. If this response already has a
// follow-up (the idempotent-resubmission case, spec §8 scenario 3), no
// duplicate is appended.
func (c *Coordinator) maybeAppendFollowup(ctx context.Context, interview *data.Interview, job *data.Job, question *data.Question, response *data.Response) (*data.Question, error) {
	questions, err := c.store.ListQuestionsByInterview(interview.ID)
	if err != nil {
		return nil, fmt.Errorf("coordinator: list questions: %w", err)
	}
	for _, q := range questions {
		if q.IsFollowup && q.ParentQuestionID != nil && *q.ParentQuestionID == question.ID {
			return nil, nil
		}
	}

	var cvContext []string
	if c.index != nil {
		if chunks, retrieveErr := c.index.Retrieve(ctx, interview.ID, response.AnswerText, 3); retrieveErr == nil {
			for _, sc := range chunks {
				cvContext = append(cvContext, sc.Chunk.Content)
			}
		}
	}

	followupResp, err := c.aiClient.GenerateFollowUp(ctx, &ai.FollowUpRequest{
		JobDescription:   job.Description,
		OriginalQuestion: question.Text,
		AnswerText:       response.AnswerText,
		WeakestAxis:      weakestAxis(response),
		CVContext:        cvContext,
	})
	if err != nil {
		return nil, err
	}

	nextIndex, err := c.store.NextQuestionOrderIndex(interview.ID)
	if err != nil {
		return nil, fmt.Errorf("coordinator: next order index: %w", err)
	}

	parentID := question.ID
	followup := &data.Question{
		ID:               data.GenerateID(),
		InterviewID:      interview.ID,
		Text:             followupResp.Question.Text,
		Type:             data.QuestionTypeFollowup,
		Difficulty:       data.GetValidatedDifficulty(followupResp.Question.Difficulty),
		OrderIndex:       nextIndex,
		ParentQuestionID: &parentID,
		IsFollowup:       true,
		AIContext:        followupResp.Question.AIContext,
	}
	if err := c.store.CreateQuestions([]*data.Question{followup}); err != nil {
		return nil, fmt.Errorf("coordinator: persist follow-up: %w", err)
	}
	return followup, nil
}

func weakestAxis(r *data.Response) string {
	scores := map[string]int{
		"relevance":     r.RelevanceScore,
		"technical":     r.TechnicalScore,
		"communication": r.CommunicationScore,
		"confidence":    r.ConfidenceScore,
	}
	weakest := "relevance"
	lowest := scores[weakest]
	for axis, score := range scores {
		if score < lowest {
			weakest = axis
			lowest = score
		}
	}
	return weakest
}

func voiceAnalysisBlob(a *voice.Analysis) data.JSONBlob {
	return data.JSONBlob{
		"transcript":       a.Transcript,
		"word_count":       a.WordCount,
		"duration_seconds": a.DurationSeconds,
		"pace_wpm":         a.PaceWPM,
		"filler_count":     a.FillerCount,
		"pause_count":      a.PauseCount,
		"clarity_score":    a.ClarityScore,
		"confidence_score": a.ConfidenceScore,
		"degraded":         a.Degraded,
		"summary":          a.Summary,
	}
}

// CompleteInterview transitions the interview to completed, stops
// proctoring (if it was running), invokes Fusion & Report, and persists the
// final score and analysis (spec §4.1).
func (c *Coordinator) CompleteInterview(ctx context.Context, interviewID string) (*fusion.Report, error) {
	lock := c.lockFor(interviewID)
	lock.Lock()
	defer lock.Unlock()

	interview, err := c.store.GetInterview(interviewID)
	if err != nil {
		return nil, fmt.Errorf("%w: interview %s", ErrNotFound, interviewID)
	}
	if interview.Status == data.InterviewStatusCompleted {
		return nil, fmt.Errorf("%w: interview %s is already completed", ErrNotInProgress, interviewID)
	}

	job, err := c.store.GetJob(interview.JobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, interview.JobID)
	}

	responses, err := c.store.ListResponsesByInterview(interviewID)
	if err != nil {
		return nil, fmt.Errorf("coordinator: list responses: %w", err)
	}

	var proctorReport *proctoring.FinalReport
	if c.proctor != nil {
		if report, stopErr := c.proctor.StopMonitoring(interviewID); stopErr == nil {
			proctorReport = report
		}
	}

	report, err := c.fuser.Compute(ctx, job, responses, proctorReport)
	if err != nil {
		return nil, fmt.Errorf("coordinator: fusion: %w", err)
	}

	now := time.Now()
	finalScore := report.FinalScore
	updates := map[string]interface{}{
		"status":       data.InterviewStatusCompleted,
		"completed_at": &now,
		"final_score":  &finalScore,
		"ai_analysis": data.JSONBlob{
			"grade":       report.Grade,
			"axis_scores": report.AxisScores,
			"strengths":   report.Strengths,
			"weaknesses":  report.Weaknesses,
			"summary":     report.Summary,
		},
	}
	if proctorReport != nil {
		updates["cv_monitoring_report"] = data.JSONBlob{
			"total_frames": proctorReport.TotalFrames,
			"final_level":  proctorReport.FinalLevel,
			"final_risk":   proctorReport.FinalRisk,
			"alert_counts": proctorReport.AlertCounts,
		}
	}

	if err := c.store.UpdateInterview(interviewID, updates); err != nil {
		return nil, fmt.Errorf("coordinator: persist completion: %w", err)
	}

	return report, nil
}

// StartMonitoring begins a proctoring session for interviewID (spec §6:
// `POST /monitoring/start/{id}`).
func (c *Coordinator) StartMonitoring(ctx context.Context, interviewID string) error {
	if c.proctor == nil {
		return fmt.Errorf("%w: proctoring is not configured", ErrGenerationFailed)
	}
	lock := c.lockFor(interviewID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := c.store.GetInterview(interviewID); err != nil {
		return fmt.Errorf("%w: interview %s", ErrNotFound, interviewID)
	}
	return c.proctor.StartMonitoring(interviewID)
}

// AnalyzeFrame feeds one frame into the proctoring engine (spec §6:
// `POST /monitoring/analyze/{id}`).
func (c *Coordinator) AnalyzeFrame(ctx context.Context, interviewID string, frame []byte) (*proctoring.FrameResult, error) {
	if c.proctor == nil {
		return nil, fmt.Errorf("%w: proctoring is not configured", ErrGenerationFailed)
	}
	lock := c.lockFor(interviewID)
	lock.Lock()
	defer lock.Unlock()

	return c.proctor.AnalyzeFrame(ctx, interviewID, frame)
}

// MonitoringStatus returns a snapshot of the current proctoring session
// (spec §6: `GET /monitoring/status/{id}`).
func (c *Coordinator) MonitoringStatus(interviewID string) (*proctoring.StatusResult, error) {
	if c.proctor == nil {
		return nil, fmt.Errorf("%w: proctoring is not configured", ErrGenerationFailed)
	}
	return c.proctor.GetStatus(interviewID)
}

// StopMonitoring finalises a proctoring session independently of completing
// the interview (spec §6: `POST /monitoring/stop/{id}`).
func (c *Coordinator) StopMonitoring(interviewID string) (*proctoring.FinalReport, error) {
	if c.proctor == nil {
		return nil, fmt.Errorf("%w: proctoring is not configured", ErrGenerationFailed)
	}
	lock := c.lockFor(interviewID)
	lock.Lock()
	defer lock.Unlock()

	return c.proctor.StopMonitoring(interviewID)
}

// RankedJob returns a job's completed interviews ordered by final_score
// descending, ties broken by earlier completed_at (spec §4.7).
func (c *Coordinator) RankedJob(ctx context.Context, jobID string) ([]fusion.RankedInterview, error) {
	interviews, err := c.store.ListCompletedInterviewsByJob(jobID)
	if err != nil {
		return nil, fmt.Errorf("coordinator: list completed interviews: %w", err)
	}
	return fusion.Rank(interviews), nil
}
