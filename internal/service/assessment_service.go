package service

import (
	"encoding/json"
	"time"

	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/repository"
	"lms_assessment_backend/internal/util"

	"gorm.io/gorm"
)

// AssessmentService owns the question bank: assessment metadata and the
// ordered, typed question definitions the grading engine reads. Every
// question mutation recomputes the parent's TotalPoints in the same
// transaction so the sum invariant holds whenever an attempt is scored.
type AssessmentService struct {
	Repo *repository.AssessmentRepository
	DB   *gorm.DB
}

func NewAssessmentService(repo *repository.AssessmentRepository, db *gorm.DB) *AssessmentService {
	return &AssessmentService{Repo: repo, DB: db}
}

type AssessmentRequest struct {
	CourseID     uint     `json:"courseId"`
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	PassingScore *float64 `json:"passingScore"`
	MaxAttempts  *int     `json:"maxAttempts"`
	TimeLimit    int      `json:"timeLimit"`
}

func (req AssessmentRequest) validate() error {
	if req.PassingScore != nil && (*req.PassingScore < 0 || *req.PassingScore > 100) {
		return util.Validationf("passingScore must be between 0 and 100")
	}
	if req.MaxAttempts != nil && *req.MaxAttempts < 1 {
		return util.Validationf("maxAttempts must be at least 1")
	}
	if req.TimeLimit < 0 {
		return util.Validationf("timeLimit must not be negative")
	}
	return nil
}

func (s *AssessmentService) CreateAssessment(req AssessmentRequest) (*model.Assessment, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	a := &model.Assessment{
		CourseID:     req.CourseID,
		Title:        req.Title,
		Description:  req.Description,
		PassingScore: req.PassingScore,
		MaxAttempts:  req.MaxAttempts,
		TimeLimit:    req.TimeLimit,
	}
	if err := s.Repo.CreateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) UpdateAssessment(id uint, req AssessmentRequest) (*model.Assessment, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	a, err := s.Repo.FindAssessmentByID(id)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	a.CourseID = req.CourseID
	a.Title = req.Title
	a.Description = req.Description
	a.PassingScore = req.PassingScore
	a.MaxAttempts = req.MaxAttempts
	a.TimeLimit = req.TimeLimit
	if err := s.Repo.UpdateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) GetAssessment(id uint) (*model.Assessment, error) {
	a, err := s.Repo.FindAssessmentByID(id)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	return a, nil
}

func (s *AssessmentService) ListAssessments(courseID uint, page, limit int) ([]model.Assessment, int64, error) {
	return s.Repo.ListAssessments(courseID, page, limit)
}

func (s *AssessmentService) DeleteAssessment(id uint) error {
	if _, err := s.Repo.FindAssessmentByID(id); err != nil {
		return util.ErrAssessmentNotFound
	}
	return s.Repo.DeleteAssessment(id)
}

// PublishAssessment toggles the attempt-creation gate.
func (s *AssessmentService) PublishAssessment(id uint, publish bool) (*model.Assessment, error) {
	a, err := s.Repo.FindAssessmentByID(id)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	a.IsPublished = publish
	if publish {
		now := time.Now()
		a.PublishedAt = &now
	} else {
		a.PublishedAt = nil
	}
	if err := s.Repo.UpdateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

type QuestionRequest struct {
	QuestionType model.QuestionType `json:"questionType" binding:"required"`
	Prompt       string             `json:"prompt" binding:"required"`
	Data         json.RawMessage    `json:"data"`
	Points       float64            `json:"points"`
	Explanation  string             `json:"explanation"`
}

func validateQuestion(req QuestionRequest) error {
	if !req.QuestionType.Valid() {
		return util.Validationf("unknown question type %q", req.QuestionType)
	}
	if req.Points <= 0 {
		return util.Validationf("points must be positive")
	}
	data, err := model.DecodeQuestionData(req.QuestionType, req.Data)
	if err != nil {
		return util.Validationf("%v", err)
	}
	if mc, ok := data.(model.MultipleChoiceData); ok {
		if len(mc.Options) < 2 {
			return util.Validationf("multiple_choice needs at least two options")
		}
		correct := 0
		seen := make(map[string]bool, len(mc.Options))
		for _, o := range mc.Options {
			if o.ID == "" {
				return util.Validationf("multiple_choice option id required")
			}
			if seen[o.ID] {
				return util.Validationf("duplicate option id %q", o.ID)
			}
			seen[o.ID] = true
			if o.Correct {
				correct++
			}
		}
		if correct != 1 {
			return util.Validationf("multiple_choice needs exactly one correct option, got %d", correct)
		}
	}
	return nil
}

// AddQuestion appends a question at the next order index and refreshes the
// assessment's TotalPoints in the same transaction.
func (s *AssessmentService) AddQuestion(assessmentID uint, req QuestionRequest) (*model.Question, error) {
	if _, err := s.Repo.FindAssessmentByID(assessmentID); err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	var created *model.Question
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Question{}).
			Where("assessment_id = ?", assessmentID).Count(&count).Error; err != nil {
			return err
		}
		q := &model.Question{
			AssessmentID: assessmentID,
			QuestionType: req.QuestionType,
			Prompt:       req.Prompt,
			Data:         req.Data,
			Points:       req.Points,
			OrderIndex:   int(count) + 1,
			Explanation:  req.Explanation,
		}
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		created = q
		return s.refreshTotalPoints(tx, assessmentID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *AssessmentService) UpdateQuestion(assessmentID, questionID uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.Repo.FindQuestionByID(questionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if q.AssessmentID != assessmentID {
		return nil, util.Validationf("question does not belong to assessment")
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		q.QuestionType = req.QuestionType
		q.Prompt = req.Prompt
		q.Data = req.Data
		q.Points = req.Points
		q.Explanation = req.Explanation
		if err := tx.Save(q).Error; err != nil {
			return err
		}
		return s.refreshTotalPoints(tx, assessmentID)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// DeleteQuestion removes a question and closes the order gap so indexes stay
// dense, then refreshes TotalPoints.
func (s *AssessmentService) DeleteQuestion(assessmentID, questionID uint) error {
	q, err := s.Repo.FindQuestionByID(questionID)
	if err != nil {
		return util.ErrQuestionNotFound
	}
	if q.AssessmentID != assessmentID {
		return util.Validationf("question does not belong to assessment")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&model.Question{}, questionID).Error; err != nil {
			return err
		}
		var rest []model.Question
		if err := tx.Where("assessment_id = ?", assessmentID).
			Order("order_index asc").Find(&rest).Error; err != nil {
			return err
		}
		for i := range rest {
			if rest[i].OrderIndex != i+1 {
				if err := tx.Model(&rest[i]).Update("order_index", i+1).Error; err != nil {
					return err
				}
			}
		}
		return s.refreshTotalPoints(tx, assessmentID)
	})
}

func (s *AssessmentService) ListQuestions(assessmentID uint) ([]model.Question, error) {
	if _, err := s.Repo.FindAssessmentByID(assessmentID); err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	return s.Repo.ListQuestions(assessmentID)
}

// LearnerQuestion is the answer-key-free view served to learners.
type LearnerQuestion struct {
	ID           uint               `json:"id"`
	QuestionType model.QuestionType `json:"questionType"`
	Prompt       string             `json:"prompt"`
	Data         json.RawMessage    `json:"data,omitempty"`
	Points       float64            `json:"points"`
	OrderIndex   int                `json:"orderIndex"`
}

// ListLearnerQuestions strips grading rules: choice options lose their
// correct flags, true/false and subjective payloads are withheld entirely.
func (s *AssessmentService) ListLearnerQuestions(assessmentID uint) ([]LearnerQuestion, error) {
	a, err := s.Repo.FindAssessmentByID(assessmentID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	if !a.IsPublished {
		return nil, util.ErrAssessmentNotPublished
	}

	qs, err := s.Repo.ListQuestions(assessmentID)
	if err != nil {
		return nil, err
	}

	res := make([]LearnerQuestion, 0, len(qs))
	for _, q := range qs {
		lq := LearnerQuestion{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Prompt:       q.Prompt,
			Points:       q.Points,
			OrderIndex:   q.OrderIndex,
		}
		if q.QuestionType == model.MultipleChoice {
			data, err := model.DecodeQuestionData(q.QuestionType, q.Data)
			if err != nil {
				return nil, err
			}
			mc := data.(model.MultipleChoiceData)
			options := make([]model.ChoiceOption, len(mc.Options))
			for i, o := range mc.Options {
				options[i] = model.ChoiceOption{ID: o.ID, Text: o.Text}
			}
			stripped, err := json.Marshal(model.MultipleChoiceData{Options: options})
			if err != nil {
				return nil, err
			}
			lq.Data = stripped
		}
		res = append(res, lq)
	}
	return res, nil
}

func (s *AssessmentService) refreshTotalPoints(tx *gorm.DB, assessmentID uint) error {
	total, err := s.Repo.SumQuestionPoints(tx, assessmentID)
	if err != nil {
		return err
	}
	return tx.Model(&model.Assessment{}).Where("id = ?", assessmentID).
		Update("total_points", total).Error
}
