// Job data access (CRUD operations)
package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// JobRepository interface defines the contract for job data access. Jobs are
// created once and are immutable thereafter (spec §3), so there is no Update.
type JobRepository interface {
	Create(job *Job) error
	GetByID(id string) (*Job, error)
	List(limit, offset int) ([]*Job, int64, error)
}

// jobRepository implements JobRepository
type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// Create creates a new job
func (r *jobRepository) Create(job *Job) error {
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()
	return r.db.Create(job).Error
}

// GetByID retrieves a job by ID
func (r *jobRepository) GetByID(id string) (*Job, error) {
	var job Job
	err := r.db.Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("job not found")
	}
	return &job, err
}

// List retrieves jobs with pagination
func (r *jobRepository) List(limit, offset int) ([]*Job, int64, error) {
	var jobs []*Job
	var total int64

	query := r.db.Model(&Job{})
	query.Count(&total)

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&jobs).Error
	return jobs, total, err
}
