package service

import (
	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/repository"
	"lms_assessment_backend/internal/util"
)

// RubricService manages grading rubrics and converts a grader's
// per-criterion judgments into points. Only the manual grading path ever
// touches rubrics.
type RubricService struct {
	Repo *repository.RubricRepository
}

func NewRubricService(repo *repository.RubricRepository) *RubricService {
	return &RubricService{Repo: repo}
}

type RubricCriterionRequest struct {
	Description string  `json:"description" binding:"required"`
	MaxPoints   float64 `json:"maxPoints"`
}

type RubricRequest struct {
	AssessmentID *uint                    `json:"assessmentId"`
	Title        string                   `json:"title" binding:"required"`
	Description  string                   `json:"description"`
	Criteria     []RubricCriterionRequest `json:"criteria"`
}

func (req RubricRequest) validate() error {
	if len(req.Criteria) == 0 {
		return util.Validationf("rubric needs at least one criterion")
	}
	for i, c := range req.Criteria {
		if c.MaxPoints <= 0 {
			return util.Validationf("criterion %d: maxPoints must be positive", i+1)
		}
	}
	return nil
}

func (s *RubricService) CreateRubric(req RubricRequest) (*model.Rubric, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	rubric := &model.Rubric{
		AssessmentID: req.AssessmentID,
		Title:        req.Title,
		Description:  req.Description,
	}
	for i, c := range req.Criteria {
		rubric.Criteria = append(rubric.Criteria, model.RubricCriterion{
			Description: c.Description,
			MaxPoints:   c.MaxPoints,
			OrderIndex:  i + 1,
		})
	}
	if err := s.Repo.Create(rubric); err != nil {
		return nil, err
	}
	return rubric, nil
}

func (s *RubricService) UpdateRubric(id uint, req RubricRequest) (*model.Rubric, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	rubric, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrRubricNotFound
	}
	rubric.AssessmentID = req.AssessmentID
	rubric.Title = req.Title
	rubric.Description = req.Description
	if err := s.Repo.Update(rubric); err != nil {
		return nil, err
	}
	criteria := make([]model.RubricCriterion, len(req.Criteria))
	for i, c := range req.Criteria {
		criteria[i] = model.RubricCriterion{
			Description: c.Description,
			MaxPoints:   c.MaxPoints,
		}
	}
	if err := s.Repo.ReplaceCriteria(id, criteria); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(id)
}

func (s *RubricService) GetRubric(id uint) (*model.Rubric, error) {
	rubric, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrRubricNotFound
	}
	return rubric, nil
}

func (s *RubricService) ListRubrics(assessmentID uint) ([]model.Rubric, error) {
	return s.Repo.ListByAssessment(assessmentID)
}

func (s *RubricService) DeleteRubric(id uint) error {
	if _, err := s.Repo.FindByID(id); err != nil {
		return util.ErrRubricNotFound
	}
	return s.Repo.Delete(id)
}

// EvaluateRubric is the pure mapping from a grader's per-criterion point
// selections to a total. Each selection is clamped to its criterion's
// maximum, negatives are floored at zero, and the total never exceeds the
// rubric's point sum. Selections must reference criteria of this rubric.
func EvaluateRubric(rubric *model.Rubric, selections map[uint]float64) (float64, error) {
	maxByID := make(map[uint]float64, len(rubric.Criteria))
	var maxTotal float64
	for _, c := range rubric.Criteria {
		maxByID[c.ID] = c.MaxPoints
		maxTotal += c.MaxPoints
	}

	var total float64
	for criterionID, points := range selections {
		maxPoints, ok := maxByID[criterionID]
		if !ok {
			return 0, util.Validationf("criterion %d does not belong to rubric %d", criterionID, rubric.ID)
		}
		if points < 0 {
			points = 0
		}
		if points > maxPoints {
			points = maxPoints
		}
		total += points
	}
	if total > maxTotal {
		total = maxTotal
	}
	return total, nil
}

type RubricEvaluationRequest struct {
	Selections map[uint]float64 `json:"selections" binding:"required"`
}

// Evaluate resolves the rubric and applies EvaluateRubric; graders use the
// result as the points_earned input to the manual grading pass.
func (s *RubricService) Evaluate(rubricID uint, req RubricEvaluationRequest) (float64, error) {
	rubric, err := s.Repo.FindByID(rubricID)
	if err != nil {
		return 0, util.ErrRubricNotFound
	}
	return EvaluateRubric(rubric, req.Selections)
}
