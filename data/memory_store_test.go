package data_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zidane0000/ai-interview-platform/data"
)

func TestMemoryStore_InterviewCRUD(t *testing.T) {
	ms := data.NewMemoryStore()

	interview := &data.Interview{ID: "int-1", JobID: "job-1", CandidateName: "Ada Lovelace", Status: data.InterviewStatusPending}
	assert.NoError(t, ms.CreateInterview(interview))

	got, err := ms.GetInterview("int-1")
	assert.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.CandidateName)

	_, err = ms.GetInterview("missing")
	assert.Error(t, err)
}

func TestMemoryStore_GetInterviewsWithOptions_FilterAndSort(t *testing.T) {
	ms := data.NewMemoryStore()
	assert.NoError(t, ms.CreateInterview(&data.Interview{ID: "1", CandidateName: "Bob", Status: data.InterviewStatusCompleted}))
	assert.NoError(t, ms.CreateInterview(&data.Interview{ID: "2", CandidateName: "Alice", Status: data.InterviewStatusPending}))

	result, err := ms.GetInterviewsWithOptions(data.ListInterviewsOptions{Status: data.InterviewStatusCompleted})
	assert.NoError(t, err)
	assert.Len(t, result.Interviews, 1)
	assert.Equal(t, "Bob", result.Interviews[0].CandidateName)
}

func TestMemoryStore_QuestionOrdering(t *testing.T) {
	ms := data.NewMemoryStore()
	assert.NoError(t, ms.CreateQuestions([]*data.Question{
		{ID: "q1", InterviewID: "int-1", OrderIndex: 1, Type: data.QuestionTypeGeneral},
		{ID: "q2", InterviewID: "int-1", OrderIndex: 2, Type: data.QuestionTypeTechnical},
	}))

	next, err := ms.NextOrderIndex("int-1")
	assert.NoError(t, err)
	assert.Equal(t, 3, next)

	list, err := ms.ListQuestionsByInterview("int-1")
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "q1", list[0].ID)
}

func TestMemoryStore_UpsertResponse_IsIdempotent(t *testing.T) {
	ms := data.NewMemoryStore()
	r1 := &data.Response{ID: "r1", InterviewID: "int-1", QuestionID: "q1", AnswerText: "first answer"}
	assert.NoError(t, ms.UpsertResponse(r1))

	r2 := &data.Response{ID: "ignored-id", InterviewID: "int-1", QuestionID: "q1", AnswerText: "second answer"}
	assert.NoError(t, ms.UpsertResponse(r2))

	all, err := ms.ListResponsesByInterview("int-1")
	assert.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "r1", all[0].ID)
	assert.Equal(t, "second answer", all[0].AnswerText)
}

func TestMemoryStore_ListCompletedInterviewsByJob_RanksByScore(t *testing.T) {
	ms := data.NewMemoryStore()
	s1, s2 := 70.0, 90.0
	assert.NoError(t, ms.CreateInterview(&data.Interview{ID: "a", JobID: "job-1", Status: data.InterviewStatusCompleted, FinalScore: &s1}))
	assert.NoError(t, ms.CreateInterview(&data.Interview{ID: "b", JobID: "job-1", Status: data.InterviewStatusCompleted, FinalScore: &s2}))

	ranked, err := ms.ListCompletedInterviewsByJob("job-1")
	assert.NoError(t, err)
	assert.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].ID)
}
