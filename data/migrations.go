package data

import (
	"github.com/zidane0000/ai-interview-platform/utils"
	"gorm.io/gorm"
)

// AddPerformanceIndexes creates additional database indexes for better performance
func AddPerformanceIndexes(db *gorm.DB) error { // Index for interview queries
	if err := db.Exec("CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_interviews_status ON interviews(status);").Error; err != nil {
		utils.Warningf("Could not create status index: %v\n", err)
	}

	if err := db.Exec("CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_interviews_created_at ON interviews(created_at);").Error; err != nil {
		utils.Warningf("Could not create created_at index: %v\n", err)
	}

	if err := db.Exec("CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_interviews_job_id ON interviews(job_id);").Error; err != nil {
		utils.Warningf("Could not create job_id index: %v\n", err)
	}

	// Index for question ordering within an interview
	if err := db.Exec("CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_questions_interview_id_order ON questions(interview_id, order_index);").Error; err != nil {
		utils.Warningf("Warning: Could not create question composite index: %v\n", err)
	}

	// Index for response lookups (one response per question within an interview)
	if err := db.Exec("CREATE UNIQUE INDEX CONCURRENTLY IF NOT EXISTS idx_responses_interview_question ON responses(interview_id, question_id);").Error; err != nil {
		utils.Warningf("Warning: Could not create response uniqueness index: %v\n", err)
	}

	return nil
}
