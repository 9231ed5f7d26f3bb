package model

import (
	"encoding/json"
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptGraded     AttemptStatus = "graded"
	AttemptExpired    AttemptStatus = "expired"
)

// Terminal reports whether no further transition may leave the status.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptGraded || s == AttemptExpired
}

// AssessmentAttempt is one learner's run at an assessment. AttemptNumber is
// 1-based and unique per (assessment, user); the unique index backs the
// retry-on-conflict path for concurrent starts.
//
// swagger:model AssessmentAttempt
type AssessmentAttempt struct {
	BaseModel
	AssessmentID  uint          `gorm:"uniqueIndex:idx_attempt_number;type:bigint unsigned;not null" json:"assessmentId"`
	UserID        uint          `gorm:"uniqueIndex:idx_attempt_number;index;type:bigint unsigned;not null" json:"userId"`
	AttemptNumber int           `gorm:"uniqueIndex:idx_attempt_number;not null" json:"attemptNumber"`
	Status        AttemptStatus `gorm:"size:20;default:'in_progress';index" json:"status"`

	StartedAt   time.Time  `json:"startedAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	GradedAt    *time.Time `json:"gradedAt,omitempty"`

	// Score fields are provisional while Status is submitted and any
	// subjective question remains ungraded.
	Score         *float64 `json:"score,omitempty"`
	TotalPossible *float64 `json:"totalPossible,omitempty"`
	Percentage    *float64 `json:"percentage,omitempty"`
	Passed        *bool    `json:"passed,omitempty"`
}

func (AssessmentAttempt) TableName() string {
	return "assessment_attempts"
}

// AssessmentResponse is the single stored answer for (attempt, question);
// later saves overwrite it. IsCorrect stays nil for subjective questions.
type AssessmentResponse struct {
	BaseModel
	AttemptID  uint `gorm:"uniqueIndex:idx_response_question;type:bigint unsigned;not null" json:"attemptId"`
	QuestionID uint `gorm:"uniqueIndex:idx_response_question;type:bigint unsigned;not null" json:"questionId"`

	AnswerData json.RawMessage `gorm:"type:json" json:"answerData,omitempty"`

	IsCorrect    *bool      `json:"isCorrect,omitempty"`
	PointsEarned *float64   `json:"pointsEarned,omitempty"`
	AutoGraded   bool       `gorm:"default:false" json:"autoGraded"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	GradedBy     *uint      `gorm:"type:bigint unsigned" json:"gradedBy,omitempty"`
	GradedAt     *time.Time `json:"gradedAt,omitempty"`
}

func (AssessmentResponse) TableName() string {
	return "assessment_responses"
}
