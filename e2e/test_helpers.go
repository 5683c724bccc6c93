// Package e2e exercises the HTTP surface (spec §6) against a running
// instance of the service, the same black-box style as the teacher's
// original e2e suite. Point API_BASE_URL at a live server before running;
// these are skipped unless that variable is set, since they are not unit
// tests the normal `go test ./...` run should expect to pass offline.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
)

type StartInterviewResponseDTO struct {
	InterviewID string `json:"interview_id"`
	Status      string `json:"status"`
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
	Response         ResponseDTO  `json:"response"`
	FollowupQuestion *QuestionDTO `json:"followup_question,omitempty"`
}

type CompleteInterviewResponseDTO struct {
	FinalScore float64 `json:"final_score"`
	AIAnalysis struct {
		Grade      string             `json:"grade"`
		AxisScores map[string]float64 `json:"axis_scores"`
		Strengths  []string           `json:"strengths"`
		Weaknesses []string           `json:"weaknesses"`
		Summary    string             `json:"summary"`
	} `json:"ai_analysis"`
}

type ErrorResponseDTO struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// requireLiveServer skips the test unless API_BASE_URL names a server to
// run these integration tests against.
func requireLiveServer(t *testing.T) string {
	t.Helper()
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		t.Skip("API_BASE_URL not set; skipping live e2e test")
	}
	return baseURL
}

// testJobID returns the job these tests run against. Job creation isn't
// exposed over HTTP by this spec's surface (it is assumed to happen through
// an internal/admin path), so these tests expect E2E_JOB_ID to name a job
// that already exists on the target server, and skip when it is unset.
func testJobID(t *testing.T) string {
	t.Helper()
	jobID := os.Getenv("E2E_JOB_ID")
	if jobID == "" {
		t.Skip("E2E_JOB_ID not set; skipping test that requires a seeded job")
	}
	return jobID
}

func StartInterview(t *testing.T, baseURL, jobID, candidateName string) StartInterviewResponseDTO {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"job_id":         jobID,
		"candidate_name": candidateName,
	})
	resp, err := http.Post(baseURL+"/interviews/start", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("StartInterview: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("StartInterview: expected 201, got %d", resp.StatusCode)
	}
	var out StartInterviewResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode StartInterview response: %v", err)
	}
	return out
}

func GetQuestions(t *testing.T, baseURL, interviewID string) []QuestionDTO {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("%s/interviews/%s/questions", baseURL, interviewID))
	if err != nil {
		t.Fatalf("GetQuestions: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GetQuestions: expected 200, got %d", resp.StatusCode)
	}
	var out []QuestionDTO
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode GetQuestions response: %v", err)
	}
	return out
}

func SubmitResponse(t *testing.T, baseURL, interviewID, questionID, answerText string) (*http.Response, *SubmitResponseResponseDTO) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"question_id": questionID,
		"answer_text": answerText,
	})
	resp, err := http.Post(fmt.Sprintf("%s/interviews/%s/response", baseURL, interviewID), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()
	var out SubmitResponseResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode SubmitResponse response: %v", err)
	}
	return resp, &out
}

func CompleteInterview(t *testing.T, baseURL, interviewID string) (*http.Response, *CompleteInterviewResponseDTO) {
	t.Helper()
	resp, err := http.Post(fmt.Sprintf("%s/interviews/%s/complete", baseURL, interviewID), "application/json", nil)
	if err != nil {
		t.Fatalf("CompleteInterview: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()
	var out CompleteInterviewResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode CompleteInterview response: %v", err)
	}
	return resp, &out
}

func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedKind string) {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != expectedStatus {
		t.Errorf("expected status %d, got %d", expectedStatus, resp.StatusCode)
	}
	var errResp ErrorResponseDTO
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if expectedKind != "" && errResp.Kind != expectedKind {
		t.Errorf("expected kind %q, got %q", expectedKind, errResp.Kind)
	}
}

func GetSampleAnswer() string {
	return "I led the migration of our monolith's checkout path to a queue-backed, " +
		"idempotent worker pool, cutting p99 latency by 40% and eliminating double-charges " +
		"under retry storms."
}
