package e2e

import "testing"

// TestCompleteInterviewWorkflow walks an interview through its full
// lifecycle against a live server: start, fetch the generated question
// batch, answer each one, then complete and check a final score comes back.
func TestCompleteInterviewWorkflow(t *testing.T) {
	baseURL := requireLiveServer(t)
	jobID := testJobID(t)

	interview := StartInterview(t, baseURL, jobID, "Grace Hopper")
	if interview.Status != "pending" {
		t.Fatalf("expected pending status, got %q", interview.Status)
	}

	questions := GetQuestions(t, baseURL, interview.InterviewID)
	if len(questions) == 0 {
		t.Fatal("expected a non-empty initial question batch")
	}

	for _, q := range questions {
		resp, submitted := SubmitResponse(t, baseURL, interview.InterviewID, q.ID, GetSampleAnswer())
		if submitted == nil {
			t.Fatalf("submit response for %s: unexpected status %d", q.ID, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp, report := CompleteInterview(t, baseURL, interview.InterviewID)
	if report == nil {
		t.Fatalf("complete interview: unexpected status %d", resp.StatusCode)
	}
	if report.FinalScore <= 0 {
		t.Fatalf("expected a positive final score, got %v", report.FinalScore)
	}
	if report.AIAnalysis.Grade == "" {
		t.Fatal("expected a non-empty grade in the final report")
	}
}

// TestQuestionsAreIdempotent checks spec §8's idempotency guarantee: fetching
// the question batch twice returns the same questions rather than
// regenerating them.
func TestQuestionsAreIdempotent(t *testing.T) {
	baseURL := requireLiveServer(t)
	jobID := testJobID(t)

	interview := StartInterview(t, baseURL, jobID, "Katherine Johnson")
	first := GetQuestions(t, baseURL, interview.InterviewID)
	second := GetQuestions(t, baseURL, interview.InterviewID)

	if len(first) != len(second) {
		t.Fatalf("question count changed across calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("question %d differs across calls: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

// TestLowScoreTriggersFollowup mirrors spec §8 scenario 2: a terse,
// low-quality answer should produce a follow-up question in the same
// response.
func TestLowScoreTriggersFollowup(t *testing.T) {
	baseURL := requireLiveServer(t)
	jobID := testJobID(t)

	interview := StartInterview(t, baseURL, jobID, "Ada Lovelace")
	questions := GetQuestions(t, baseURL, interview.InterviewID)
	if len(questions) == 0 {
		t.Fatal("expected at least one question")
	}

	resp, submitted := SubmitResponse(t, baseURL, interview.InterviewID, questions[0].ID, "idk")
	if submitted == nil {
		t.Fatalf("submit response: unexpected status %d", resp.StatusCode)
	}
	resp.Body.Close()

	if submitted.FollowupQuestion == nil {
		t.Skip("server's evaluator did not score this answer low enough to trigger a follow-up")
	}
	if !submitted.FollowupQuestion.IsFollowup {
		t.Error("expected returned question to be marked is_followup")
	}
}
