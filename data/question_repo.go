// Question data access (CRUD operations)
package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// QuestionRepository interface defines the contract for question data access
type QuestionRepository interface {
	Create(question *Question) error
	CreateBatch(questions []*Question) error
	GetByID(id string) (*Question, error)
	ListByInterview(interviewID string) ([]*Question, error)
	// NextOrderIndex returns the order_index to use for the next question
	// appended to an interview (dense 1..N at generation time, follow-ups
	// append at the tail — spec §3/§4.1).
	NextOrderIndex(interviewID string) (int, error)
}

// questionRepository implements QuestionRepository
type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// Create creates a single question
func (r *questionRepository) Create(question *Question) error {
	question.CreatedAt = time.Now()
	question.UpdatedAt = time.Now()
	return r.db.Create(question).Error
}

// CreateBatch creates multiple questions in one statement (initial batch).
func (r *questionRepository) CreateBatch(questions []*Question) error {
	now := time.Now()
	for _, q := range questions {
		q.CreatedAt = now
		q.UpdatedAt = now
	}
	if len(questions) == 0 {
		return nil
	}
	return r.db.Create(&questions).Error
}

// GetByID retrieves a question by ID
func (r *questionRepository) GetByID(id string) (*Question, error) {
	var question Question
	err := r.db.Where("id = ?", id).First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("question not found")
	}
	return &question, err
}

// ListByInterview returns all questions for an interview, ordered by order_index.
func (r *questionRepository) ListByInterview(interviewID string) ([]*Question, error) {
	var questions []*Question
	err := r.db.Where("interview_id = ?", interviewID).Order("order_index ASC").Find(&questions).Error
	return questions, err
}

// NextOrderIndex returns max(order_index)+1 for the interview, or 1 if none exist.
func (r *questionRepository) NextOrderIndex(interviewID string) (int, error) {
	var max int
	row := r.db.Model(&Question{}).Where("interview_id = ?", interviewID).
		Select("COALESCE(MAX(order_index), 0)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max + 1, nil
}
