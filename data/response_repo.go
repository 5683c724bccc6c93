// Response data access (CRUD operations)
package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ResponseRepository interface defines the contract for response data access.
// submit_response is idempotent per (interview_id, question_id) — a retry
// overwrites the prior row rather than inserting a duplicate (spec §4.1).
type ResponseRepository interface {
	Upsert(response *Response) error
	GetByID(id string) (*Response, error)
	GetByInterviewAndQuestion(interviewID, questionID string) (*Response, error)
	ListByInterview(interviewID string) ([]*Response, error)
}

// responseRepository implements ResponseRepository
type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

// Upsert creates a new response, or overwrites the existing one for the same
// (interview_id, question_id) pair, keeping its original ID.
func (r *responseRepository) Upsert(response *Response) error {
	existing, err := r.GetByInterviewAndQuestion(response.InterviewID, response.QuestionID)
	if err != nil {
		return err
	}
	now := time.Now()
	response.UpdatedAt = now
	if existing != nil {
		response.ID = existing.ID
		response.CreatedAt = existing.CreatedAt
		return r.db.Model(&Response{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"answer_text":                   response.AnswerText,
			"answer_audio_ref":              response.AnswerAudioRef,
			"answer_duration_seconds":       response.AnswerDurationSeconds,
			"relevance_score":               response.RelevanceScore,
			"technical_score":               response.TechnicalScore,
			"communication_score":           response.CommunicationScore,
			"evaluator_communication_score": response.EvaluatorCommunicationScore,
			"confidence_score":              response.ConfidenceScore,
			"ai_feedback":                   response.AIFeedback,
			"voice_analysis":                response.VoiceAnalysis,
			"updated_at":                    now,
		}).Error
	}
	response.CreatedAt = now
	return r.db.Create(response).Error
}

// GetByID retrieves a response by ID
func (r *responseRepository) GetByID(id string) (*Response, error) {
	var response Response
	err := r.db.Where("id = ?", id).First(&response).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("response not found")
	}
	return &response, err
}

// GetByInterviewAndQuestion returns nil, nil when no response exists yet.
func (r *responseRepository) GetByInterviewAndQuestion(interviewID, questionID string) (*Response, error) {
	var response Response
	err := r.db.Where("interview_id = ? AND question_id = ?", interviewID, questionID).First(&response).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByInterview returns all responses for an interview, in submission order.
func (r *responseRepository) ListByInterview(interviewID string) ([]*Response, error) {
	var responses []*Response
	err := r.db.Where("interview_id = ?", interviewID).Order("created_at ASC").Find(&responses).Error
	return responses, err
}
