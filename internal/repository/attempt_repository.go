package repository

import (
	"lms_assessment_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(tx *gorm.DB, attempt *model.AssessmentAttempt) error {
	return tx.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.AssessmentAttempt, error) {
	var a model.AssessmentAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) Update(attempt *model.AssessmentAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) CountByUserAndAssessment(tx *gorm.DB, userID, assessmentID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.AssessmentAttempt{}).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Count(&count).Error
	return count, err
}

// TransitionStatus performs the guarded status flip as a single conditional
// update; ok is false when another caller won the race.
func (r *AttemptRepository) TransitionStatus(tx *gorm.DB, attemptID uint, from model.AttemptStatus, updates map[string]interface{}) (bool, error) {
	res := tx.Model(&model.AssessmentAttempt{}).
		Where("id = ? AND status = ?", attemptID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *AttemptRepository) ListByUser(userID, assessmentID uint) ([]model.AssessmentAttempt, error) {
	var attempts []model.AssessmentAttempt
	query := r.DB.Where("user_id = ?", userID)
	if assessmentID > 0 {
		query = query.Where("assessment_id = ?", assessmentID)
	}
	err := query.Order("started_at desc").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByAssessment(assessmentID uint, status model.AttemptStatus, page, limit int) ([]model.AssessmentAttempt, int64, error) {
	var attempts []model.AssessmentAttempt
	var total int64
	query := r.DB.Model(&model.AssessmentAttempt{}).Where("assessment_id = ?", assessmentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("started_at desc").Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) ListGradedByAssessment(assessmentID uint) ([]model.AssessmentAttempt, error) {
	var attempts []model.AssessmentAttempt
	err := r.DB.Where("assessment_id = ? AND status = ?", assessmentID, model.AttemptGraded).
		Find(&attempts).Error
	return attempts, err
}

// Response methods

// UpsertResponse keeps one row per (attempt, question); a second save for the
// same question overwrites the first.
func (r *AttemptRepository) UpsertResponse(resp *model.AssessmentResponse) error {
	var existing model.AssessmentResponse
	err := r.DB.Where("attempt_id = ? AND question_id = ?", resp.AttemptID, resp.QuestionID).
		First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if existing.ID == 0 {
		return r.DB.Create(resp).Error
	}
	existing.AnswerData = resp.AnswerData
	existing.IsCorrect = nil
	existing.PointsEarned = nil
	existing.AutoGraded = false
	existing.Feedback = ""
	existing.GradedBy = nil
	existing.GradedAt = nil
	if err := r.DB.Save(&existing).Error; err != nil {
		return err
	}
	*resp = existing
	return nil
}

func (r *AttemptRepository) GetResponses(attemptID uint) ([]model.AssessmentResponse, error) {
	var responses []model.AssessmentResponse
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&responses).Error
	return responses, err
}

func (r *AttemptRepository) SaveResponses(tx *gorm.DB, responses []model.AssessmentResponse) error {
	for i := range responses {
		if err := tx.Save(&responses[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *AttemptRepository) GetResponsesByAttemptIDs(attemptIDs []uint) ([]model.AssessmentResponse, error) {
	if len(attemptIDs) == 0 {
		return nil, nil
	}
	var responses []model.AssessmentResponse
	err := r.DB.Where("attempt_id IN ?", attemptIDs).Find(&responses).Error
	return responses, err
}
