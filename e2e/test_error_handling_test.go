package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

// TestStartInterview_UnknownJob exercises spec §7's NotFound→404 mapping.
func TestStartInterview_UnknownJob(t *testing.T) {
	baseURL := requireLiveServer(t)

	body, _ := json.Marshal(map[string]string{
		"job_id":         "does-not-exist",
		"candidate_name": "Ada Lovelace",
	})
	resp, err := http.Post(baseURL+"/interviews/start", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /interviews/start: %v", err)
	}
	AssertErrorResponse(t, resp, http.StatusNotFound, "NotFound")
}

// TestStartInterview_MissingCandidateName exercises spec §7's
// ValidationFailed→400 mapping.
func TestStartInterview_MissingCandidateName(t *testing.T) {
	baseURL := requireLiveServer(t)
	jobID := testJobID(t)

	body, _ := json.Marshal(map[string]string{"job_id": jobID})
	resp, err := http.Post(baseURL+"/interviews/start", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /interviews/start: %v", err)
	}
	AssertErrorResponse(t, resp, http.StatusBadRequest, "ValidationFailed")
}

// TestSubmitResponse_UnknownQuestion exercises the NotFound mapping for a
// question ID that doesn't belong to the interview.
func TestSubmitResponse_UnknownQuestion(t *testing.T) {
	baseURL := requireLiveServer(t)
	jobID := testJobID(t)

	interview := StartInterview(t, baseURL, jobID, "Error Case")
	body, _ := json.Marshal(map[string]string{
		"question_id": "bogus-question-id",
		"answer_text": "An answer.",
	})
	resp, err := http.Post(fmt.Sprintf("%s/interviews/%s/response", baseURL, interview.InterviewID), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /interviews/{id}/response: %v", err)
	}
	AssertErrorResponse(t, resp, http.StatusNotFound, "NotFound")
}

// TestCompleteInterview_AlreadyCompleted exercises spec §7's
// InvalidState→409 mapping.
func TestCompleteInterview_AlreadyCompleted(t *testing.T) {
	baseURL := requireLiveServer(t)
	jobID := testJobID(t)

	interview := StartInterview(t, baseURL, jobID, "Double Complete")
	GetQuestions(t, baseURL, interview.InterviewID)

	firstResp, firstReport := CompleteInterview(t, baseURL, interview.InterviewID)
	if firstReport == nil {
		t.Fatalf("first complete: unexpected status %d", firstResp.StatusCode)
	}
	firstResp.Body.Close()

	secondResp, secondReport := CompleteInterview(t, baseURL, interview.InterviewID)
	if secondReport != nil {
		t.Fatal("expected second complete to fail")
	}
	AssertErrorResponse(t, secondResp, http.StatusConflict, "InvalidState")
}

// TestMonitoringAnalyze_BadFrame exercises spec §7's BadFrame→400 mapping.
func TestMonitoringAnalyze_BadFrame(t *testing.T) {
	baseURL := requireLiveServer(t)
	jobID := testJobID(t)

	interview := StartInterview(t, baseURL, jobID, "Bad Frame Case")
	body, _ := json.Marshal(map[string]string{"frame_base64": "not valid base64!!"})
	resp, err := http.Post(fmt.Sprintf("%s/monitoring/analyze/%s", baseURL, interview.InterviewID), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /monitoring/analyze/{id}: %v", err)
	}
	AssertErrorResponse(t, resp, http.StatusBadRequest, "")
}
