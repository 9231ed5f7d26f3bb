package model

// Rubric is a structured point-allocation guide for human graders. The
// automatic grading path never reads it.
type Rubric struct {
	BaseModel
	AssessmentID *uint             `gorm:"index;type:bigint unsigned" json:"assessmentId,omitempty"`
	Title        string            `gorm:"size:255;not null" json:"title"`
	Description  string            `gorm:"type:text" json:"description"`
	Criteria     []RubricCriterion `gorm:"foreignKey:RubricID" json:"criteria"`
}

func (Rubric) TableName() string {
	return "rubrics"
}

type RubricCriterion struct {
	BaseModel
	RubricID    uint    `gorm:"index;type:bigint unsigned;not null" json:"rubricId"`
	Description string  `gorm:"type:text;not null" json:"description"`
	MaxPoints   float64 `gorm:"not null" json:"maxPoints"`
	OrderIndex  int     `gorm:"default:0" json:"orderIndex"`
}

func (RubricCriterion) TableName() string {
	return "rubric_criteria"
}
