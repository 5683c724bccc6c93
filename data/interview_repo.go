// Interview data access (CRUD operations)
package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// InterviewFilters defines filter options for interview queries
type InterviewFilters struct {
	JobID         string
	CandidateName string
	Status        string
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// InterviewRepository interface defines the contract for interview data access
type InterviewRepository interface {
	Create(interview *Interview) error
	GetByID(id string) (*Interview, error)
	List(limit, offset int, filters InterviewFilters) ([]*Interview, int64, error)
	Update(id string, updates map[string]interface{}) error
	Delete(id string) error
	// ListCompletedByJob returns completed interviews for a job, ordered by
	// final_score descending then completed_at ascending (spec §4.7 ranking).
	ListCompletedByJob(jobID string) ([]*Interview, error)
}

// interviewRepository implements InterviewRepository interface
type interviewRepository struct {
	db *gorm.DB
}

// NewInterviewRepository creates a new interview repository
func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

// Create creates a new interview
func (r *interviewRepository) Create(interview *Interview) error {
	interview.CreatedAt = time.Now()
	interview.UpdatedAt = time.Now()
	return r.db.Create(interview).Error
}

// GetByID retrieves an interview by ID
func (r *interviewRepository) GetByID(id string) (*Interview, error) {
	var interview Interview
	err := r.db.Where("id = ?", id).First(&interview).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("interview not found")
	}
	return &interview, err
}

// List retrieves interviews with pagination and filtering
func (r *interviewRepository) List(limit, offset int, filters InterviewFilters) ([]*Interview, int64, error) {
	var interviews []*Interview
	var total int64

	query := r.db.Model(&Interview{})
	// Apply filters
	if filters.JobID != "" {
		query = query.Where("job_id = ?", filters.JobID)
	}
	if filters.CandidateName != "" {
		query = query.Where("candidate_name ILIKE ?", "%"+filters.CandidateName+"%")
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if !filters.CreatedAfter.IsZero() {
		query = query.Where("created_at >= ?", filters.CreatedAfter)
	}
	if !filters.CreatedBefore.IsZero() {
		query = query.Where("created_at <= ?", filters.CreatedBefore)
	}

	// Get total count
	query.Count(&total)

	// Apply pagination and ordering
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&interviews).Error
	return interviews, total, err
}

// Update updates an interview
func (r *interviewRepository) Update(id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&Interview{}).Where("id = ?", id).Updates(updates).Error
}

// Delete deletes an interview (soft delete could be implemented here)
func (r *interviewRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&Interview{}).Error
}

// ListCompletedByJob implements the spec §4.7 ranking: order by final_score
// descending, ties broken by earlier completed_at.
func (r *interviewRepository) ListCompletedByJob(jobID string) ([]*Interview, error) {
	var interviews []*Interview
	err := r.db.Where("job_id = ? AND status = ?", jobID, InterviewStatusCompleted).
		Order("final_score DESC, completed_at ASC").
		Find(&interviews).Error
	return interviews, err
}

// TODO: Add database transaction support for complex operations
// TODO: Implement audit logging for data changes
// TODO: Add caching layer for frequently accessed interviews
// TODO: Implement data archival for old interviews
