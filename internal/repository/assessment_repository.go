package repository

import (
	"lms_assessment_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) CreateAssessment(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindAssessmentByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepository) ListAssessments(courseID uint, page, limit int) ([]model.Assessment, int64, error) {
	var as []model.Assessment
	var total int64
	query := r.DB.Model(&model.Assessment{})
	if courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AssessmentRepository) UpdateAssessment(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

func (r *AssessmentRepository) DeleteAssessment(id uint) error {
	return r.DB.Delete(&model.Assessment{}, id).Error
}

// Question methods

func (r *AssessmentRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *AssessmentRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *AssessmentRepository) ListQuestions(assessmentID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("assessment_id = ?", assessmentID).
		Order("order_index asc").Find(&qs).Error
	return qs, err
}

func (r *AssessmentRepository) UpdateQuestion(q *model.Question) error {
	return r.DB.Save(q).Error
}

// DeleteQuestion removes the row for real: the (assessment_id, order_index)
// unique index would otherwise collide with soft-deleted rows on reorder.
func (r *AssessmentRepository) DeleteQuestion(id uint) error {
	return r.DB.Unscoped().Delete(&model.Question{}, id).Error
}

// SumQuestionPoints returns Σ points over the assessment's questions.
func (r *AssessmentRepository) SumQuestionPoints(tx *gorm.DB, assessmentID uint) (float64, error) {
	var total *float64
	err := tx.Model(&model.Question{}).
		Where("assessment_id = ?", assessmentID).
		Select("SUM(points)").Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, err
}
