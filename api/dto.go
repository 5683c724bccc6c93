package api

import "time"

// Data Transfer Objects (DTOs) for API request and response payloads.
// These define the JSON structure for spec §6's HTTP surface.

// --- Interview lifecycle DTOs ---

type StartInterviewRequestDTO struct {
	JobID          string `json:"job_id"`
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email,omitempty"`
	CandidatePhone string `json:"candidate_phone,omitempty"`
}

type StartInterviewResponseDTO struct {
	InterviewID string `json:"interview_id"`
	Status      string `json:"status"`
}

type UploadCVResponseDTO struct {
	OK            bool   `json:"ok"`
	ChunksIndexed bool   `json:"chunks_indexed"`
	Warning       string `json:"warning,omitempty"`
}

type QuestionDTO struct {
	ID               string  `json:"id"`
	Text             string  `json:"text"`
	Type             string  `json:"type"`
	Difficulty       string  `json:"difficulty"`
	OrderIndex       int     `json:"order_index"`
	ParentQuestionID *string `json:"parent_question_id,omitempty"`
	IsFollowup       bool    `json:"is_followup"`
}

type SubmitResponseRequestDTO struct {
	QuestionID string `json:"question_id"`
	AnswerText string `json:"answer_text"`
	AudioRef   string `json:"audio_ref,omitempty"`
}

type ResponseDTO struct {
	ID                 string  `json:"id"`
	InterviewID        string  `json:"interview_id"`
	QuestionID         string  `json:"question_id"`
	AnswerText         string  `json:"answer_text"`
	RelevanceScore     int     `json:"relevance_score"`
	TechnicalScore     int     `json:"technical_score"`
	CommunicationScore int     `json:"communication_score"`
	ConfidenceScore    int     `json:"confidence_score"`
	AIFeedback         string  `json:"ai_feedback"`
	MeanScore          float64 `json:"mean_score"`
}

type SubmitResponseResponseDTO struct {
	Response        ResponseDTO  `json:"response"`
	FollowupQuestion *QuestionDTO `json:"followup_question,omitempty"`
}

type UploadAudioResponseDTO struct {
	VoiceAnalysis VoiceAnalysisDTO `json:"voice_analysis"`
}

type VoiceAnalysisDTO struct {
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

type CompleteInterviewResponseDTO struct {
	FinalScore float64    `json:"final_score"`
	AIAnalysis AIAnalysisDTO `json:"ai_analysis"`
}

type AIAnalysisDTO struct {
	Grade      string             `json:"grade"`
	AxisScores map[string]float64 `json:"axis_scores"`
	Strengths  []string           `json:"strengths"`
	Weaknesses []string           `json:"weaknesses"`
	Summary    string             `json:"summary"`
}

// --- Proctoring DTOs ---

type MonitoringStartResponseDTO struct {
	OK bool `json:"ok"`
}

type AnalyzeFrameRequestDTO struct {
	FrameBase64 string `json:"frame_base64"`
}

type AlertDTO struct {
	Type        string    `json:"type"`
	Level       string    `json:"level"`
	Confidence  float64   `json:"confidence"`
	FiredAt     time.Time `json:"fired_at"`
	FrameNumber int       `json:"frame_number"`
}

type AnalyzeFrameResponseDTO struct {
	FrameNumber int        `json:"frame_number"`
	Detections  []AlertDTO `json:"detections"`
	Warnings    []AlertDTO `json:"warnings"`
	RiskScore   float64    `json:"risk_score"`
	RiskLevel   string     `json:"risk_level"`
}

type MonitoringStatusResponseDTO struct {
	FrameCount     int        `json:"frame_count"`
	RiskScore      float64    `json:"risk_score"`
	RiskLevel      string     `json:"risk_level"`
	RecentWarnings []AlertDTO `json:"recent_warnings"`
}

type MonitoringStopResponseDTO struct {
	FinalReport FinalReportDTO `json:"final_report"`
}

type FinalReportDTO struct {
	TotalFrames int            `json:"total_frames"`
	FinalRisk   float64        `json:"final_risk_score"`
	FinalLevel  string         `json:"final_risk_level"`
	AlertCounts map[string]int `json:"alert_counts"`
}

// --- Reporting DTOs ---

type RankedCandidateDTO struct {
	InterviewID string    `json:"interview_id"`
	Candidate   string    `json:"candidate"`
	FinalScore  float64   `json:"final_score"`
	CompletedAt time.Time `json:"completed_at"`
}

// --- Error DTO ---
type ErrorResponseDTO struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Details  string `json:"details,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}
