package model

import (
	"encoding/json"
	"time"
)

// swagger:model Assessment
type Assessment struct {
	BaseModel
	CourseID     uint       `gorm:"index;type:bigint unsigned" json:"courseId"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	TotalPoints  float64    `gorm:"default:0" json:"totalPoints"`
	PassingScore *float64   `json:"passingScore,omitempty"` // percentage; nil = everyone passes
	MaxAttempts  *int       `json:"maxAttempts,omitempty"`  // nil = unlimited
	TimeLimit    int        `gorm:"default:0" json:"timeLimit"` // Minutes, 0 = none
	IsPublished  bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// Question holds its grading rule inside Data, decoded per QuestionType.
// OrderIndex is dense and unique within one assessment.
type Question struct {
	BaseModel
	AssessmentID uint            `gorm:"uniqueIndex:idx_question_order;type:bigint unsigned;not null" json:"assessmentId"`
	QuestionType QuestionType    `gorm:"size:50;not null" json:"questionType"`
	Prompt       string          `gorm:"type:text;not null" json:"prompt"`
	Data         json.RawMessage `gorm:"type:json" json:"data,omitempty"`
	Points       float64         `gorm:"not null" json:"points"`
	OrderIndex   int             `gorm:"uniqueIndex:idx_question_order;not null" json:"orderIndex"`
	Explanation  string          `gorm:"type:text" json:"explanation"`
}

func (Question) TableName() string {
	return "questions"
}
