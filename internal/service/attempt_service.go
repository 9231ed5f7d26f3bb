package service

import (
	"encoding/json"
	"errors"
	"time"

	"lms_assessment_backend/internal/config"
	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/repository"
	"lms_assessment_backend/internal/util"
	"lms_assessment_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// startAttemptRetries bounds the duplicate-key retry loop for concurrent
// starts racing on the same attempt number.
const startAttemptRetries = 3

// AttemptService creates attempts and records answers while an attempt is in
// progress. Grading is GradingService's job.
type AttemptService struct {
	AttemptRepo    *repository.AttemptRepository
	AssessmentRepo *repository.AssessmentRepository
	Config         *config.Config
	DB             *gorm.DB
}

func NewAttemptService(attemptRepo *repository.AttemptRepository, assessmentRepo *repository.AssessmentRepository, cfg *config.Config, db *gorm.DB) *AttemptService {
	return &AttemptService{
		AttemptRepo:    attemptRepo,
		AssessmentRepo: assessmentRepo,
		Config:         cfg,
		DB:             db,
	}
}

// StartAttempt numbers the new attempt from a count taken inside the same
// transaction as the insert; the unique (assessment, user, attempt_number)
// index plus retry closes the check-then-create race without exceeding
// MaxAttempts or duplicating numbers.
func (s *AttemptService) StartAttempt(userID, assessmentID uint) (*model.AssessmentAttempt, error) {
	assessment, err := s.AssessmentRepo.FindAssessmentByID(assessmentID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	if !assessment.IsPublished {
		return nil, util.ErrAssessmentNotPublished
	}

	var attempt *model.AssessmentAttempt
	for i := 0; i < startAttemptRetries; i++ {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			count, err := s.AttemptRepo.CountByUserAndAssessment(tx, userID, assessmentID)
			if err != nil {
				return err
			}
			if assessment.MaxAttempts != nil && count >= int64(*assessment.MaxAttempts) {
				return util.ErrAttemptLimitExceeded
			}
			attempt = &model.AssessmentAttempt{
				AssessmentID:  assessmentID,
				UserID:        userID,
				AttemptNumber: int(count) + 1,
				Status:        model.AttemptInProgress,
				StartedAt:     time.Now(),
			}
			return s.AttemptRepo.Create(tx, attempt)
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsStarted.Inc()
	return attempt, nil
}

type SaveResponseRequest struct {
	QuestionID uint            `json:"questionId" binding:"required"`
	AnswerData json.RawMessage `json:"answerData" binding:"required"`
}

// SaveResponse upserts the learner's answer for one question. No correctness
// is computed here; interim saves stay cheap and idempotent.
func (s *AttemptService) SaveResponse(userID, attemptID uint, req SaveResponseRequest) (*model.AssessmentResponse, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return nil, util.ErrNotAttemptOwner
	}
	assessment, err := s.AssessmentRepo.FindAssessmentByID(attempt.AssessmentID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	if err := s.ensureEditable(attempt, assessment); err != nil {
		return nil, err
	}

	question, err := s.AssessmentRepo.FindQuestionByID(req.QuestionID)
	if err != nil || question.AssessmentID != attempt.AssessmentID {
		return nil, util.ErrQuestionNotFound
	}
	if _, err := model.DecodeAnswerData(question.QuestionType, req.AnswerData); err != nil {
		return nil, util.Validationf("%v", err)
	}

	resp := &model.AssessmentResponse{
		AttemptID:  attemptID,
		QuestionID: req.QuestionID,
		AnswerData: req.AnswerData,
	}
	if err := s.AttemptRepo.UpsertResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

type AttemptDetail struct {
	Attempt   *model.AssessmentAttempt   `json:"attempt"`
	Responses []model.AssessmentResponse `json:"responses"`
}

// GetAttempt returns the attempt with its responses. Learners may only read
// their own attempts; staff may read any.
func (s *AttemptService) GetAttempt(attemptID, userID uint, staff bool) (*AttemptDetail, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if !staff && attempt.UserID != userID {
		return nil, util.ErrNotAttemptOwner
	}
	responses, err := s.AttemptRepo.GetResponses(attemptID)
	if err != nil {
		return nil, err
	}
	return &AttemptDetail{Attempt: attempt, Responses: responses}, nil
}

func (s *AttemptService) ListAttempts(userID, assessmentID uint) ([]model.AssessmentAttempt, error) {
	return s.AttemptRepo.ListByUser(userID, assessmentID)
}

func (s *AttemptService) ListAssessmentAttempts(assessmentID uint, status model.AttemptStatus, page, limit int) ([]model.AssessmentAttempt, int64, error) {
	if status != "" {
		switch status {
		case model.AttemptInProgress, model.AttemptSubmitted, model.AttemptGraded, model.AttemptExpired:
		default:
			return nil, 0, util.Validationf("unknown attempt status %q", status)
		}
	}
	return s.AttemptRepo.ListByAssessment(assessmentID, status, page, limit)
}

// ensureEditable rejects any attempt that left in_progress, and lazily flips
// an overdue in_progress attempt to the terminal expired state. The caller is
// still responsible for not issuing work past the deadline; this is the
// engine-side backstop that makes `expired` reachable.
func (s *AttemptService) ensureEditable(attempt *model.AssessmentAttempt, assessment *model.Assessment) error {
	if attempt.Status != model.AttemptInProgress {
		return util.ErrAttemptNotEditable
	}
	if assessment.TimeLimit <= 0 {
		return nil
	}
	grace := time.Duration(s.Config.Grading.ExpiryGraceSeconds) * time.Second
	deadline := attempt.StartedAt.Add(time.Duration(assessment.TimeLimit)*time.Minute + grace)
	if time.Now().Before(deadline) {
		return nil
	}
	ok, err := s.AttemptRepo.TransitionStatus(s.DB, attempt.ID, model.AttemptInProgress, map[string]interface{}{
		"status": model.AttemptExpired,
	})
	if err != nil {
		return err
	}
	if ok {
		attempt.Status = model.AttemptExpired
	}
	return util.ErrAttemptNotEditable
}
