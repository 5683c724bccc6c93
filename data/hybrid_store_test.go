package data_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zidane0000/ai-interview-platform/data"
)

func TestHybridStore_MemoryBackend_JobAndInterviewLifecycle(t *testing.T) {
	store, err := data.NewHybridStore(data.BackendMemory, "")
	assert.NoError(t, err)
	assert.Equal(t, data.BackendMemory, store.GetBackend())
	assert.NoError(t, store.Health())

	job := &data.Job{ID: "job-1", Title: "Backend Engineer", ScoringCriteria: data.FloatMap{"technical": 0.4, "communication": 0.3, "behavioral": 0.2, "experience": 0.1}}
	assert.NoError(t, store.CreateJob(job))

	got, err := store.GetJob("job-1")
	assert.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Title)

	interview := &data.Interview{ID: "int-1", JobID: "job-1", CandidateName: "Grace Hopper", Status: data.InterviewStatusPending}
	assert.NoError(t, store.CreateInterview(interview))

	idx, err := store.NextQuestionOrderIndex("int-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, idx)

	assert.NoError(t, store.CreateQuestions([]*data.Question{{ID: "q1", InterviewID: "int-1", OrderIndex: 1, Type: data.QuestionTypeGeneral}}))

	idx2, err := store.NextQuestionOrderIndex("int-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, idx2)
}

func TestAutoDetectBackend_NoDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	assert.Equal(t, data.BackendMemory, data.AutoDetectBackend())
}
