package e2e

import (
	"sync"
	"testing"
)

// TestConcurrentInterviewsDoNotInterfere exercises spec §5's per-interview
// locking guarantee: answering several independent interviews concurrently
// must not corrupt or cross-contaminate any of their state.
func TestConcurrentInterviewsDoNotInterfere(t *testing.T) {
	baseURL := requireLiveServer(t)
	jobID := testJobID(t)

	const candidateCount = 5
	var wg sync.WaitGroup
	errs := make(chan string, candidateCount)

	for i := 0; i < candidateCount; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			interview := StartInterview(t, baseURL, jobID, "Candidate")
			questions := GetQuestions(t, baseURL, interview.InterviewID)
			if len(questions) == 0 {
				errs <- "candidate got no questions"
				return
			}
			for _, q := range questions {
				resp, submitted := SubmitResponse(t, baseURL, interview.InterviewID, q.ID, GetSampleAnswer())
				if submitted == nil {
					errs <- "submit failed unexpectedly"
					resp.Body.Close()
					return
				}
				if submitted.Response.QuestionID != q.ID {
					errs <- "response question_id mismatch across concurrent interviews"
				}
				resp.Body.Close()
			}
			resp, report := CompleteInterview(t, baseURL, interview.InterviewID)
			if report == nil {
				errs <- "complete failed unexpectedly"
				resp.Body.Close()
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

// TestConcurrentSubmissionsToSameQuestionAreIdempotent resubmits the same
// answer to the same question from multiple goroutines: spec §8 scenario 3
// requires the stored response to be a single row, not one per call.
func TestConcurrentSubmissionsToSameQuestionAreIdempotent(t *testing.T) {
	baseURL := requireLiveServer(t)
	jobID := testJobID(t)

	interview := StartInterview(t, baseURL, jobID, "Repeat Submitter")
	questions := GetQuestions(t, baseURL, interview.InterviewID)
	if len(questions) == 0 {
		t.Fatal("expected at least one question")
	}

	const attempts = 5
	ids := make(chan string, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, submitted := SubmitResponse(t, baseURL, interview.InterviewID, questions[0].ID, GetSampleAnswer())
			if submitted != nil {
				ids <- submitted.Response.ID
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Fatalf("expected exactly one distinct response ID across concurrent resubmissions, got %d", len(seen))
	}
}
