// Hybrid store that can use either memory or database backend
//
// Architecture: Adapter Pattern
// HybridStore provides a unified interface that adapts between two different storage implementations:
// - MemoryStore: In-memory storage for development (simple map-based)
// - DatabaseService: PostgreSQL storage for production (repository-based)
//
// The adapter automatically detects which backend to use based on DATABASE_URL environment variable.
// This enables zero-configuration switching between development (no database) and production (PostgreSQL).
//
// The if/else routing in each method is intentional adapter logic, not code duplication.
package data

import (
	"fmt"
	"os"
)

// StoreBackend defines the type of backend storage
type StoreBackend string

const (
	BackendMemory   StoreBackend = "memory"
	BackendDatabase StoreBackend = "database"
)

// HybridStore provides a unified interface that can use either memory or database
type HybridStore struct {
	backend     StoreBackend
	memoryStore *MemoryStore
	dbService   *DatabaseService
}

// NewHybridStore creates a new hybrid store
func NewHybridStore(backend StoreBackend, databaseURL string) (*HybridStore, error) {
	store := &HybridStore{
		backend:     backend,
		memoryStore: NewMemoryStore(),
	}

	if backend == BackendDatabase {
		if databaseURL == "" {
			return nil, fmt.Errorf("database URL required for database backend")
		}

		err := InitDatabaseService(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database service: %w", err)
		}

		store.dbService = DBService
	}

	return store, nil
}

// AutoDetectBackend automatically detects which backend to use based on environment
func AutoDetectBackend() StoreBackend {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		return BackendDatabase
	}
	return BackendMemory
}

// CreateJob creates a new job using the configured backend
func (h *HybridStore) CreateJob(job *Job) error {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.JobRepo.Create(job)
	}
	return h.memoryStore.CreateJob(job)
}

// GetJob retrieves a job by ID
func (h *HybridStore) GetJob(id string) (*Job, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.JobRepo.GetByID(id)
	}
	return h.memoryStore.GetJob(id)
}

// ListJobs lists jobs with pagination
func (h *HybridStore) ListJobs(limit, offset int) ([]*Job, int, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		jobs, total, err := h.dbService.JobRepo.List(limit, offset)
		return jobs, int(total), err
	}
	return h.memoryStore.ListJobs(limit, offset)
}

// CreateInterview creates a new interview using the configured backend
func (h *HybridStore) CreateInterview(interview *Interview) error {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.InterviewRepo.Create(interview)
	}
	return h.memoryStore.CreateInterview(interview)
}

// GetInterview retrieves an interview by ID
func (h *HybridStore) GetInterview(id string) (*Interview, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.InterviewRepo.GetByID(id)
	}
	return h.memoryStore.GetInterview(id)
}

// UpdateInterview applies a partial update to an interview.
func (h *HybridStore) UpdateInterview(id string, updates map[string]interface{}) error {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.InterviewRepo.Update(id, updates)
	}
	return h.memoryStore.UpdateInterview(id, updates)
}

// GetInterviewsWithOptions retrieves interviews with pagination, filtering, and sorting
func (h *HybridStore) GetInterviewsWithOptions(options ListInterviewsOptions) (*ListInterviewsResult, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		filters := InterviewFilters{
			JobID:         options.JobID,
			CandidateName: options.CandidateName,
			Status:        options.Status,
		}
		if !options.DateFrom.IsZero() {
			filters.CreatedAfter = options.DateFrom
		}
		if !options.DateTo.IsZero() {
			filters.CreatedBefore = options.DateTo
		}

		interviews, total, err := h.dbService.InterviewRepo.List(options.Limit, options.Offset, filters)
		if err != nil {
			return nil, err
		}

		limit := options.Limit
		if limit <= 0 {
			limit = 10
		}
		totalPages := int(total) / limit
		if int(total)%limit > 0 {
			totalPages++
		}
		if totalPages == 0 {
			totalPages = 1
		}

		return &ListInterviewsResult{
			Interviews: interviews,
			Total:      int(total),
			Page:       (options.Offset / limit) + 1,
			Limit:      limit,
			TotalPages: totalPages,
		}, nil
	}

	return h.memoryStore.GetInterviewsWithOptions(options)
}

// ListCompletedInterviewsByJob returns completed interviews for a job, ranked
// by final_score descending, ties broken by earlier completed_at (spec §4.7).
func (h *HybridStore) ListCompletedInterviewsByJob(jobID string) ([]*Interview, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.InterviewRepo.ListCompletedByJob(jobID)
	}
	return h.memoryStore.ListCompletedInterviewsByJob(jobID)
}

// CreateQuestions persists the initial question batch (or a single follow-up
// wrapped in a one-element slice).
func (h *HybridStore) CreateQuestions(questions []*Question) error {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.QuestionRepo.CreateBatch(questions)
	}
	return h.memoryStore.CreateQuestions(questions)
}

// GetQuestion retrieves a question by ID
func (h *HybridStore) GetQuestion(id string) (*Question, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.QuestionRepo.GetByID(id)
	}
	return h.memoryStore.GetQuestion(id)
}

// ListQuestionsByInterview returns an interview's questions ordered by order_index.
func (h *HybridStore) ListQuestionsByInterview(interviewID string) ([]*Question, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.QuestionRepo.ListByInterview(interviewID)
	}
	return h.memoryStore.ListQuestionsByInterview(interviewID)
}

// NextQuestionOrderIndex returns the order_index for the next question appended
// to an interview.
func (h *HybridStore) NextQuestionOrderIndex(interviewID string) (int, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.QuestionRepo.NextOrderIndex(interviewID)
	}
	return h.memoryStore.NextOrderIndex(interviewID)
}

// UpsertResponse creates or overwrites a response for (interview_id, question_id).
func (h *HybridStore) UpsertResponse(response *Response) error {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.ResponseRepo.Upsert(response)
	}
	return h.memoryStore.UpsertResponse(response)
}

// GetResponse retrieves a response by ID
func (h *HybridStore) GetResponse(id string) (*Response, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.ResponseRepo.GetByID(id)
	}
	return h.memoryStore.GetResponse(id)
}

// GetResponseByInterviewAndQuestion returns nil, nil if no response exists yet.
func (h *HybridStore) GetResponseByInterviewAndQuestion(interviewID, questionID string) (*Response, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.ResponseRepo.GetByInterviewAndQuestion(interviewID, questionID)
	}
	return h.memoryStore.GetResponseByInterviewAndQuestion(interviewID, questionID)
}

// ListResponsesByInterview returns responses for an interview in submission order.
func (h *HybridStore) ListResponsesByInterview(interviewID string) ([]*Response, error) {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.ResponseRepo.ListByInterview(interviewID)
	}
	return h.memoryStore.ListResponsesByInterview(interviewID)
}

// GetBackend returns the current backend type
func (h *HybridStore) GetBackend() StoreBackend {
	return h.backend
}

// Health checks the health of the current backend
func (h *HybridStore) Health() error {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.Health()
	}
	return nil // Memory store is always healthy
}

// Close closes the hybrid store and cleans up resources
func (h *HybridStore) Close() error {
	if h.backend == BackendDatabase && h.dbService != nil {
		return h.dbService.Close()
	}
	return nil // Memory store doesn't need cleanup
}

// Global hybrid store instance
var GlobalStore *HybridStore

// InitGlobalStore initializes the global store with auto-detected backend
func InitGlobalStore() error {
	backend := AutoDetectBackend()
	databaseURL := os.Getenv("DATABASE_URL")

	store, err := NewHybridStore(backend, databaseURL)
	if err != nil {
		return err
	}

	GlobalStore = store
	return nil
}
