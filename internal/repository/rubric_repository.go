package repository

import (
	"lms_assessment_backend/internal/model"

	"gorm.io/gorm"
)

type RubricRepository struct {
	DB *gorm.DB
}

func NewRubricRepository(db *gorm.DB) *RubricRepository {
	return &RubricRepository{DB: db}
}

func (r *RubricRepository) Create(rubric *model.Rubric) error {
	return r.DB.Create(rubric).Error
}

func (r *RubricRepository) FindByID(id uint) (*model.Rubric, error) {
	var rubric model.Rubric
	err := r.DB.Preload("Criteria", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index asc")
	}).First(&rubric, id).Error
	if err != nil {
		return nil, err
	}
	return &rubric, nil
}

func (r *RubricRepository) ListByAssessment(assessmentID uint) ([]model.Rubric, error) {
	var rubrics []model.Rubric
	err := r.DB.Preload("Criteria", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index asc")
	}).Where("assessment_id = ?", assessmentID).Find(&rubrics).Error
	return rubrics, err
}

// ReplaceCriteria swaps the criterion set atomically with the rubric update.
func (r *RubricRepository) ReplaceCriteria(rubricID uint, criteria []model.RubricCriterion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("rubric_id = ?", rubricID).
			Delete(&model.RubricCriterion{}).Error; err != nil {
			return err
		}
		for i := range criteria {
			criteria[i].ID = 0
			criteria[i].RubricID = rubricID
			criteria[i].OrderIndex = i + 1
		}
		if len(criteria) == 0 {
			return nil
		}
		return tx.Create(&criteria).Error
	})
}

func (r *RubricRepository) Update(rubric *model.Rubric) error {
	return r.DB.Omit("Criteria").Save(rubric).Error
}

func (r *RubricRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("rubric_id = ?", id).
			Delete(&model.RubricCriterion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Rubric{}, id).Error
	})
}
