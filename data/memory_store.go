package data

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore provides in-memory storage for development and testing
// TODO: Replace with proper database implementation
type MemoryStore struct {
	jobs       map[string]*Job
	interviews map[string]*Interview
	questions  map[string]*Question
	responses  map[string]*Response
	mu         sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:       make(map[string]*Job),
		interviews: make(map[string]*Interview),
		questions:  make(map[string]*Question),
		responses:  make(map[string]*Response),
	}
}

// Global memory store instance
var Store = NewMemoryStore()

// Job operations

func (ms *MemoryStore) CreateJob(job *Job) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	ms.jobs[job.ID] = job
	return nil
}

func (ms *MemoryStore) GetJob(id string) (*Job, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	job, exists := ms.jobs[id]
	if !exists {
		return nil, fmt.Errorf("job not found")
	}
	return job, nil
}

func (ms *MemoryStore) ListJobs(limit, offset int) ([]*Job, int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	all := make([]*Job, 0, len(ms.jobs))
	for _, j := range ms.jobs {
		all = append(all, j)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return []*Job{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Interview operations

func (ms *MemoryStore) CreateInterview(interview *Interview) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := time.Now()
	interview.CreatedAt = now
	interview.UpdatedAt = now
	ms.interviews[interview.ID] = interview
	return nil
}

func (ms *MemoryStore) GetInterview(id string) (*Interview, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	interview, exists := ms.interviews[id]
	if !exists {
		return nil, fmt.Errorf("interview not found")
	}
	return interview, nil
}

func (ms *MemoryStore) UpdateInterview(id string, updates map[string]interface{}) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	interview, exists := ms.interviews[id]
	if !exists {
		return fmt.Errorf("interview not found")
	}
	applyInterviewUpdates(interview, updates)
	interview.UpdatedAt = time.Now()
	return nil
}

func applyInterviewUpdates(interview *Interview, updates map[string]interface{}) {
	if v, ok := updates["status"].(string); ok {
		interview.Status = v
	}
	if v, ok := updates["started_at"].(*time.Time); ok {
		interview.StartedAt = v
	}
	if v, ok := updates["completed_at"].(*time.Time); ok {
		interview.CompletedAt = v
	}
	if v, ok := updates["final_score"].(*float64); ok {
		interview.FinalScore = v
	}
	if v, ok := updates["cv_file_path"].(string); ok {
		interview.CVFilePath = v
	}
	if v, ok := updates["ai_analysis"].(JSONBlob); ok {
		interview.AIAnalysis = v
	}
	if v, ok := updates["cv_monitoring_report"].(JSONBlob); ok {
		interview.CVMonitoringReport = v
	}
}

// ListInterviewsOptions defines options for listing interviews with pagination, filtering and sorting
type ListInterviewsOptions struct {
	Limit         int       // Page size (default: 10)
	Offset        int       // Number of records to skip (default: 0)
	Page          int       // Page number (1-based, used to calculate offset if provided)
	JobID         string    // Filter by job
	CandidateName string    // Filter by candidate name (case-insensitive partial match)
	Status        string    // Filter by status
	DateFrom      time.Time // Filter interviews created after this date
	DateTo        time.Time // Filter interviews created before this date
	SortBy        string    // Sort field: "date", "name", "status" (default: "date")
	SortOrder     string    // Sort order: "asc", "desc" (default: "desc")
}

// ListInterviewsResult contains the result of listing interviews with pagination info
type ListInterviewsResult struct {
	Interviews []*Interview
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// GetInterviewsWithOptions returns interviews with pagination, filtering, and sorting
func (ms *MemoryStore) GetInterviewsWithOptions(opts ListInterviewsOptions) (*ListInterviewsResult, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Page > 0 {
		opts.Offset = (opts.Page - 1) * opts.Limit
	}
	if opts.SortBy == "" {
		opts.SortBy = "date"
	}
	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	allInterviews := make([]*Interview, 0)
	for _, interview := range ms.interviews {
		if opts.JobID != "" && interview.JobID != opts.JobID {
			continue
		}
		if opts.CandidateName != "" {
			if !strings.Contains(strings.ToLower(interview.CandidateName), strings.ToLower(opts.CandidateName)) {
				continue
			}
		}
		if opts.Status != "" && interview.Status != opts.Status {
			continue
		}
		if !opts.DateFrom.IsZero() && interview.CreatedAt.Before(opts.DateFrom) {
			continue
		}
		if !opts.DateTo.IsZero() && interview.CreatedAt.After(opts.DateTo) {
			continue
		}
		allInterviews = append(allInterviews, interview)
	}

	sort.Slice(allInterviews, func(i, j int) bool {
		switch opts.SortBy {
		case "name":
			if opts.SortOrder == "asc" {
				return strings.ToLower(allInterviews[i].CandidateName) < strings.ToLower(allInterviews[j].CandidateName)
			}
			return strings.ToLower(allInterviews[i].CandidateName) > strings.ToLower(allInterviews[j].CandidateName)
		case "status":
			if opts.SortOrder == "asc" {
				return allInterviews[i].Status < allInterviews[j].Status
			}
			return allInterviews[i].Status > allInterviews[j].Status
		default: // "date"
			if opts.SortOrder == "asc" {
				return allInterviews[i].CreatedAt.Before(allInterviews[j].CreatedAt)
			}
			return allInterviews[i].CreatedAt.After(allInterviews[j].CreatedAt)
		}
	})

	total := len(allInterviews)
	totalPages := (total + opts.Limit - 1) / opts.Limit

	start := opts.Offset
	if start < 0 {
		start = 0
	}
	if start >= total {
		return &ListInterviewsResult{
			Interviews: []*Interview{},
			Total:      total,
			Page:       opts.Page,
			Limit:      opts.Limit,
			TotalPages: totalPages,
		}, nil
	}

	end := start + opts.Limit
	if end > total {
		end = total
	}

	return &ListInterviewsResult{
		Interviews: allInterviews[start:end],
		Total:      total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListCompletedInterviewsByJob returns completed interviews for a job ordered
// by final_score desc, completed_at asc (spec §4.7 ranking).
func (ms *MemoryStore) ListCompletedInterviewsByJob(jobID string) ([]*Interview, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	var out []*Interview
	for _, interview := range ms.interviews {
		if interview.JobID == jobID && interview.Status == InterviewStatusCompleted {
			out = append(out, interview)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].FinalScore, out[j].FinalScore
		if si == nil || sj == nil {
			return false
		}
		if *si != *sj {
			return *si > *sj
		}
		if out[i].CompletedAt == nil || out[j].CompletedAt == nil {
			return false
		}
		return out[i].CompletedAt.Before(*out[j].CompletedAt)
	})
	return out, nil
}

// Question operations

func (ms *MemoryStore) CreateQuestions(questions []*Question) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := time.Now()
	for _, q := range questions {
		q.CreatedAt = now
		q.UpdatedAt = now
		ms.questions[q.ID] = q
	}
	return nil
}

func (ms *MemoryStore) GetQuestion(id string) (*Question, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	q, exists := ms.questions[id]
	if !exists {
		return nil, fmt.Errorf("question not found")
	}
	return q, nil
}

func (ms *MemoryStore) ListQuestionsByInterview(interviewID string) ([]*Question, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	var out []*Question
	for _, q := range ms.questions {
		if q.InterviewID == interviewID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (ms *MemoryStore) NextOrderIndex(interviewID string) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	max := 0
	for _, q := range ms.questions {
		if q.InterviewID == interviewID && q.OrderIndex > max {
			max = q.OrderIndex
		}
	}
	return max + 1, nil
}

// Response operations

func (ms *MemoryStore) UpsertResponse(response *Response) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := time.Now()
	for _, r := range ms.responses {
		if r.InterviewID == response.InterviewID && r.QuestionID == response.QuestionID {
			response.ID = r.ID
			response.CreatedAt = r.CreatedAt
			response.UpdatedAt = now
			ms.responses[r.ID] = response
			return nil
		}
	}
	response.CreatedAt = now
	response.UpdatedAt = now
	ms.responses[response.ID] = response
	return nil
}

func (ms *MemoryStore) GetResponse(id string) (*Response, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	r, exists := ms.responses[id]
	if !exists {
		return nil, fmt.Errorf("response not found")
	}
	return r, nil
}

func (ms *MemoryStore) GetResponseByInterviewAndQuestion(interviewID, questionID string) (*Response, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	for _, r := range ms.responses {
		if r.InterviewID == interviewID && r.QuestionID == questionID {
			return r, nil
		}
	}
	return nil, nil
}

func (ms *MemoryStore) ListResponsesByInterview(interviewID string) ([]*Response, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	var out []*Response
	for _, r := range ms.responses {
		if r.InterviewID == interviewID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
