// Data models (structs for DB tables)
package data

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Interview status constants (spec §3: pending, in_progress, completed, cancelled)
const (
	InterviewStatusPending    = "pending"
	InterviewStatusInProgress = "in_progress"
	InterviewStatusCompleted  = "completed"
	InterviewStatusCancelled  = "cancelled"
)

// Question type constants (spec §3)
const (
	QuestionTypeTechnical  = "technical"
	QuestionTypeBehavioral = "behavioral"
	QuestionTypeSituational = "situational"
	QuestionTypeGeneral    = "general"
	QuestionTypeFollowup   = "followup"
)

// Question difficulty constants (spec §3)
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ValidateInterviewStatus checks if the provided status is one spec §3 defines
func ValidateInterviewStatus(status string) bool {
	switch status {
	case InterviewStatusPending, InterviewStatusInProgress, InterviewStatusCompleted, InterviewStatusCancelled:
		return true
	}
	return false
}

// ValidateQuestionType checks if the provided question type is supported
func ValidateQuestionType(t string) bool {
	switch t {
	case QuestionTypeTechnical, QuestionTypeBehavioral, QuestionTypeSituational, QuestionTypeGeneral, QuestionTypeFollowup:
		return true
	}
	return false
}

// ValidateDifficulty checks if the provided difficulty is supported
func ValidateDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// GetValidatedDifficulty returns a valid difficulty, defaulting to medium if invalid
func GetValidatedDifficulty(d string) string {
	if ValidateDifficulty(d) {
		return d
	}
	return DifficultyMedium
}

// StringArray is a custom type for handling PostgreSQL arrays with GORM
type StringArray []string

// Scan implements the Scanner interface for database/sql
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
}

// Value implements the Valuer interface for database/sql
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// StringMap is a custom type for handling JSON maps with GORM
type StringMap map[string]string

// Scan implements the Scanner interface for database/sql
func (s *StringMap) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringMap", value)
	}
}

// Value implements the Valuer interface for database/sql
func (s StringMap) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// FloatMap is a custom type for handling JSON float maps (e.g. scoring_criteria) with GORM
type FloatMap map[string]float64

// Scan implements the Scanner interface for database/sql
func (f *FloatMap) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("cannot scan %T into FloatMap", value)
	}
}

// Value implements the Valuer interface for database/sql
func (f FloatMap) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// JSONBlob holds an arbitrary structured document (e.g. ai_analysis,
// cv_monitoring_report) as opaque JSON.
type JSONBlob map[string]interface{}

// Scan implements the Scanner interface for database/sql
func (j *JSONBlob) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONBlob", value)
	}
}

// Value implements the Valuer interface for database/sql
func (j JSONBlob) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Job is created once by an interviewer and is immutable thereafter (spec §3).
type Job struct {
	ID                  string   `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Title               string   `gorm:"type:varchar(255);not null" json:"title"`
	Description         string   `gorm:"type:text" json:"description"`
	Requirements        string   `gorm:"type:text" json:"requirements"`
	ScoringCriteria     FloatMap `gorm:"type:jsonb" json:"scoring_criteria"`
	DefaultDurationMins int      `gorm:"column:default_duration_minutes" json:"default_interview_duration"`
	OwnerID             string   `gorm:"type:varchar(255);index" json:"owner_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Interview is a single candidate's session against a Job (spec §3).
type Interview struct {
	ID            string `gorm:"primaryKey;type:varchar(255)" json:"id"`
	JobID         string `gorm:"type:varchar(255);not null;index" json:"job_id"`
	CandidateName string `gorm:"type:varchar(255);not null" json:"candidate_name"`
	CandidateEmail string `gorm:"type:varchar(255)" json:"candidate_email,omitempty"`
	CandidatePhone string `gorm:"type:varchar(50)" json:"candidate_phone,omitempty"`
	CVFilePath    string `gorm:"type:varchar(512)" json:"cv_file_path,omitempty"`
	Status        string `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`

	StartedAt   *time.Time `gorm:"type:timestamp" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"type:timestamp" json:"completed_at,omitempty"`
	FinalScore  *float64   `gorm:"type:decimal(6,2)" json:"final_score,omitempty"`

	AIAnalysis         JSONBlob `gorm:"type:jsonb" json:"ai_analysis,omitempty"`
	CVMonitoringReport JSONBlob `gorm:"type:jsonb" json:"cv_monitoring_report,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Question belongs to an Interview (spec §3). is_followup and parent_question_id
// are kept in lock-step by the coordinator, which sets both when it creates a
// question (invariant: is_followup iff parent_question_id is not null); the
// repositories store them as given.
type Question struct {
	ID              string  `gorm:"primaryKey;type:varchar(255)" json:"id"`
	InterviewID     string  `gorm:"type:varchar(255);not null;index" json:"interview_id"`
	Text            string  `gorm:"type:text;not null" json:"text"`
	Type            string  `gorm:"type:varchar(50);not null" json:"type"`
	Difficulty      string  `gorm:"type:varchar(20);not null;default:'medium'" json:"difficulty"`
	OrderIndex      int     `gorm:"not null" json:"order_index"`
	ParentQuestionID *string `gorm:"type:varchar(255)" json:"parent_question_id,omitempty"`
	IsFollowup      bool    `gorm:"not null;default:false" json:"is_followup"`
	AIContext       string  `gorm:"type:text" json:"ai_context,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Response is one candidate answer to one Question (spec §3), one-to-one
// with a Question within an Interview.
type Response struct {
	ID                   string  `gorm:"primaryKey;type:varchar(255)" json:"id"`
	InterviewID          string  `gorm:"type:varchar(255);not null;index" json:"interview_id"`
	QuestionID           string  `gorm:"type:varchar(255);not null;index:idx_response_question" json:"question_id"`
	AnswerText           string  `gorm:"type:text" json:"answer_text"`
	AnswerAudioRef       string  `gorm:"type:varchar(512)" json:"answer_audio_ref,omitempty"`
	AnswerDurationSeconds float64 `gorm:"type:decimal(8,2)" json:"answer_duration_seconds"`

	RelevanceScore    int `gorm:"not null" json:"relevance_score"`
	TechnicalScore    int `gorm:"not null" json:"technical_score"`
	CommunicationScore int `gorm:"not null" json:"communication_score"`
	ConfidenceScore   int `gorm:"not null" json:"confidence_score"`

	// EvaluatorCommunicationScore is the evaluator's original communication
	// score, before any voice-analysis clarity blend (spec §4.6). Kept
	// separate from CommunicationScore so a later AttachAudio call always
	// re-derives the blend from the pristine score instead of compounding
	// onto an already-blended one.
	EvaluatorCommunicationScore int `gorm:"not null" json:"evaluator_communication_score"`

	AIFeedback    string   `gorm:"type:text" json:"ai_feedback"`
	VoiceAnalysis JSONBlob `gorm:"type:jsonb" json:"voice_analysis,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Mean returns the arithmetic mean of the four axis scores (spec §4.4).
func (r *Response) Mean() float64 {
	return float64(r.RelevanceScore+r.TechnicalScore+r.CommunicationScore+r.ConfidenceScore) / 4.0
}

// TODO: Add foreign key constraints once job/interview ownership auth lands
// TODO: Consider soft delete functionality (deleted_at fields)
// TODO: Add audit trail fields (created_by, updated_by)
