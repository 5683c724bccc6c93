// HTTP handler functions for each endpoint, thin adapters from chi requests
// to Coordinator calls (spec §6).
package api

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zidane0000/ai-interview-platform/api/apierror"
	"github.com/zidane0000/ai-interview-platform/coordinator"
	"github.com/zidane0000/ai-interview-platform/data"
	"github.com/zidane0000/ai-interview-platform/fusion"
	"github.com/zidane0000/ai-interview-platform/proctoring"
	"github.com/zidane0000/ai-interview-platform/utils"
	"github.com/zidane0000/ai-interview-platform/voice"
)

// defaultSampleRate/defaultChannels describe the PCM format the voice
// pipeline expects; the HTTP layer does not transcode the uploaded
// container, matching the STT provider's raw-PCM contract (voice/stt.go).
const (
	defaultSampleRate = 16000
	defaultChannels   = 1
	maxUploadBytes    = 20 << 20 // 20 MiB
)

// HandlerDependencies contains all dependencies needed by handlers.
type HandlerDependencies struct {
	Coordinator *coordinator.Coordinator
}

func NewHandlerDependencies(c *coordinator.Coordinator) *HandlerDependencies {
	return &HandlerDependencies{Coordinator: c}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Errorf("failed to encode JSON: %v", err)
	}
}

// StartInterviewHandler handles POST /interviews/start.
func (d *HandlerDependencies) StartInterviewHandler(w http.ResponseWriter, r *http.Request) {
	var req StartInterviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "invalid JSON body"))
		return
	}

	interview, err := d.Coordinator.StartInterview(r.Context(), req.JobID, req.CandidateName, req.CandidateEmail, req.CandidatePhone)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, StartInterviewResponseDTO{
		InterviewID: interview.ID,
		Status:      interview.Status,
	})
}

// UploadCVHandler handles POST /candidate/upload_cv (multipart: interview_id, file).
func (d *HandlerDependencies) UploadCVHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "invalid multipart form"))
		return
	}

	interviewID := r.FormValue("interview_id")
	if interviewID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "missing interview_id"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "missing file"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "failed to read uploaded file"))
		return
	}

	indexed, warning, err := d.Coordinator.UploadCV(r.Context(), interviewID, header.Filename, content)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadCVResponseDTO{
		OK:            true,
		ChunksIndexed: indexed,
		Warning:       warning,
	})
}

// GetQuestionsHandler handles GET /interviews/{id}/questions. It is
// idempotent: the first call generates the initial batch, later calls
// return the same set.
func (d *HandlerDependencies) GetQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, ErrMsgMissingInterviewID))
		return
	}

	questions, err := d.Coordinator.GenerateInitialQuestions(r.Context(), interviewID)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionDTOs(questions))
}

// SubmitResponseHandler handles POST /interviews/{id}/response.
func (d *HandlerDependencies) SubmitResponseHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, ErrMsgMissingInterviewID))
		return
	}

	var req SubmitResponseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "invalid JSON body"))
		return
	}
	if req.QuestionID == "" || req.AnswerText == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "question_id and answer_text are required"))
		return
	}

	var audioBytes []byte
	if req.AudioRef != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.AudioRef)
		if err != nil {
			writeAPIError(w, apierror.New(apierror.ValidationFailed, "audio_ref must be base64-encoded"))
			return
		}
		audioBytes = decoded
	}

	result, err := d.Coordinator.SubmitResponse(r.Context(), interviewID, req.QuestionID, req.AnswerText, audioBytes, defaultSampleRate, defaultChannels)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	resp := SubmitResponseResponseDTO{Response: toResponseDTO(result.Response)}
	if result.Followup != nil {
		q := toQuestionDTO(result.Followup)
		resp.FollowupQuestion = &q
	}
	writeJSON(w, http.StatusOK, resp)
}

// UploadAudioHandler handles POST /interviews/{id}/upload_audio (multipart:
// question_id, file).
func (d *HandlerDependencies) UploadAudioHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, ErrMsgMissingInterviewID))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "invalid multipart form"))
		return
	}

	questionID := r.FormValue("question_id")
	if questionID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "missing question_id"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "missing file"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, "failed to read uploaded file"))
		return
	}

	analysis, err := d.Coordinator.AttachAudio(r.Context(), interviewID, questionID, content, defaultSampleRate, defaultChannels)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadAudioResponseDTO{VoiceAnalysis: toVoiceAnalysisDTO(analysis)})
}

// CompleteInterviewHandler handles POST /interviews/{id}/complete.
func (d *HandlerDependencies) CompleteInterviewHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, ErrMsgMissingInterviewID))
		return
	}

	report, err := d.Coordinator.CompleteInterview(r.Context(), interviewID)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCompleteInterviewDTO(report))
}

// MonitoringStartHandler handles POST /monitoring/start/{id}.
func (d *HandlerDependencies) MonitoringStartHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, ErrMsgMissingInterviewID))
		return
	}

	if err := d.Coordinator.StartMonitoring(r.Context(), interviewID); err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MonitoringStartResponseDTO{OK: true})
}

// MonitoringAnalyzeHandler handles POST /monitoring/analyze/{id}.
func (d *HandlerDependencies) MonitoringAnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, ErrMsgMissingInterviewID))
		return
	}

	var req AnalyzeFrameRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, apierror.New(apierror.BadFrame, "invalid JSON body"))
		return
	}
	frame, err := base64.StdEncoding.DecodeString(req.FrameBase64)
	if err != nil || len(frame) == 0 {
		writeAPIError(w, apierror.New(apierror.BadFrame, "frame_base64 must be a non-empty base64-encoded JPEG"))
		return
	}

	result, err := d.Coordinator.AnalyzeFrame(r.Context(), interviewID, frame)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnalyzeFrameDTO(result))
}

// MonitoringStatusHandler handles GET /monitoring/status/{id}.
func (d *HandlerDependencies) MonitoringStatusHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, ErrMsgMissingInterviewID))
		return
	}

	status, err := d.Coordinator.MonitoringStatus(interviewID)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMonitoringStatusDTO(status))
}

// MonitoringStopHandler handles POST /monitoring/stop/{id}.
func (d *HandlerDependencies) MonitoringStopHandler(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, ErrMsgMissingInterviewID))
		return
	}

	report, err := d.Coordinator.StopMonitoring(interviewID)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MonitoringStopResponseDTO{FinalReport: toFinalReportDTO(report)})
}

// JobReportHandler handles GET /reports/job/{job_id}.
func (d *HandlerDependencies) JobReportHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		writeAPIError(w, apierror.New(apierror.ValidationFailed, ErrMsgMissingJobID))
		return
	}

	ranked, err := d.Coordinator.RankedJob(r.Context(), jobID)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRankedCandidateDTOs(ranked))
}

// --- DTO conversions ---

func toQuestionDTO(q *data.Question) QuestionDTO {
	return QuestionDTO{
		ID:               q.ID,
		Text:             q.Text,
		Type:             q.Type,
		Difficulty:       q.Difficulty,
		OrderIndex:       q.OrderIndex,
		ParentQuestionID: q.ParentQuestionID,
		IsFollowup:       q.IsFollowup,
	}
}

func toQuestionDTOs(questions []*data.Question) []QuestionDTO {
	out := make([]QuestionDTO, len(questions))
	for i, q := range questions {
		out[i] = toQuestionDTO(q)
	}
	return out
}

func toResponseDTO(r *data.Response) ResponseDTO {
	return ResponseDTO{
		ID:                 r.ID,
		InterviewID:        r.InterviewID,
		QuestionID:         r.QuestionID,
		AnswerText:         r.AnswerText,
		RelevanceScore:     r.RelevanceScore,
		TechnicalScore:     r.TechnicalScore,
		CommunicationScore: r.CommunicationScore,
		ConfidenceScore:    r.ConfidenceScore,
		AIFeedback:         r.AIFeedback,
		MeanScore:          r.Mean(),
	}
}

func toVoiceAnalysisDTO(a *voice.Analysis) VoiceAnalysisDTO {
	return VoiceAnalysisDTO{
		Transcript:      a.Transcript,
		WordCount:       a.WordCount,
		DurationSeconds: a.DurationSeconds,
		PaceWPM:         a.PaceWPM,
		FillerCount:     a.FillerCount,
		PauseCount:      a.PauseCount,
		ClarityScore:    a.ClarityScore,
		ConfidenceScore: a.ConfidenceScore,
		Degraded:        a.Degraded,
		Summary:         a.Summary,
	}
}

func toCompleteInterviewDTO(report *fusion.Report) CompleteInterviewResponseDTO {
	return CompleteInterviewResponseDTO{
		FinalScore: report.FinalScore,
		AIAnalysis: AIAnalysisDTO{
			Grade:      report.Grade,
			AxisScores: report.AxisScores,
			Strengths:  report.Strengths,
			Weaknesses: report.Weaknesses,
			Summary:    report.Summary,
		},
	}
}

func toAlertDTOs(alerts []proctoring.Alert) []AlertDTO {
	out := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		out[i] = AlertDTO{
			Type:        string(a.Type),
			Level:       string(a.Level),
			Confidence:  a.Confidence,
			FiredAt:     a.FiredAt,
			FrameNumber: a.FrameNumber,
		}
	}
	return out
}

func toAnalyzeFrameDTO(r *proctoring.FrameResult) AnalyzeFrameResponseDTO {
	return AnalyzeFrameResponseDTO{
		FrameNumber: r.FrameNumber,
		Detections:  toAlertDTOs(r.Detections),
		Warnings:    toAlertDTOs(r.Warnings),
		RiskScore:   r.RiskScore,
		RiskLevel:   r.RiskLevel,
	}
}

func toMonitoringStatusDTO(s *proctoring.StatusResult) MonitoringStatusResponseDTO {
	return MonitoringStatusResponseDTO{
		FrameCount:     s.FrameCount,
		RiskScore:      s.RiskScore,
		RiskLevel:      s.RiskLevel,
		RecentWarnings: toAlertDTOs(s.RecentWarnings),
	}
}

func toFinalReportDTO(r *proctoring.FinalReport) FinalReportDTO {
	return FinalReportDTO{
		TotalFrames: r.TotalFrames,
		FinalRisk:   r.FinalRisk,
		FinalLevel:  r.FinalLevel,
		AlertCounts: r.AlertCounts,
	}
}

func toRankedCandidateDTOs(ranked []fusion.RankedInterview) []RankedCandidateDTO {
	out := make([]RankedCandidateDTO, len(ranked))
	for i, r := range ranked {
		out[i] = RankedCandidateDTO{
			InterviewID: r.InterviewID,
			Candidate:   r.Candidate,
			FinalScore:  r.FinalScore,
			CompletedAt: r.CompletedAt,
		}
	}
	return out
}
