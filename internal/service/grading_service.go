package service

import (
	"context"
	"encoding/json"
	"time"

	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/repository"
	"lms_assessment_backend/internal/util"
	"lms_assessment_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// GradingService runs the two-phase grading flow: SubmitAttempt auto-grades
// objective questions and either finalizes the attempt or parks it in the
// manual queue; GradeAttempt lets a human close it out.
type GradingService struct {
	AttemptRepo    *repository.AttemptRepository
	AssessmentRepo *repository.AssessmentRepository
	Attempts       *AttemptService
	Redis          *redis.Client
	DB             *gorm.DB
}

func NewGradingService(attemptRepo *repository.AttemptRepository, assessmentRepo *repository.AssessmentRepository, attempts *AttemptService, rdb *redis.Client, db *gorm.DB) *GradingService {
	return &GradingService{
		AttemptRepo:    attemptRepo,
		AssessmentRepo: assessmentRepo,
		Attempts:       attempts,
		Redis:          rdb,
		DB:             db,
	}
}

// SubmitAttempt grades the attempt against the question bank. Answers passed
// here overlay previously saved ones; questions with no answer at all earn
// zero credit rather than blocking the submission. The in_progress→submitted
// flip is a single conditional update, so a concurrent duplicate submit loses
// the race and fails AttemptNotEditable with no mutation.
func (s *GradingService) SubmitAttempt(userID, attemptID uint, answers []SaveResponseRequest) (*model.AssessmentAttempt, error) {
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
	if err := s.Attempts.ensureEditable(attempt, assessment); err != nil {
		return nil, err
	}

	questions, err := s.AssessmentRepo.ListQuestions(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	questionByID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	stored, err := s.AttemptRepo.GetResponses(attemptID)
	if err != nil {
		return nil, err
	}
	answerByQuestion := make(map[uint]json.RawMessage, len(questions))
	responseByQuestion := make(map[uint]*model.AssessmentResponse, len(questions))
	for i := range stored {
		r := &stored[i]
		answerByQuestion[r.QuestionID] = r.AnswerData
		responseByQuestion[r.QuestionID] = r
	}
	for _, a := range answers {
		q, ok := questionByID[a.QuestionID]
		if !ok {
			return nil, util.ErrQuestionNotFound
		}
		if _, err := model.DecodeAnswerData(q.QuestionType, a.AnswerData); err != nil {
			return nil, util.Validationf("%v", err)
		}
		answerByQuestion[a.QuestionID] = a.AnswerData
	}

	// Pure computation first; nothing is written if a grading rule is broken.
	result, err := ScoreAttempt(assessment, questions, answerByQuestion)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":         model.AttemptSubmitted,
			"submitted_at":   now,
			"score":          result.Score,
			"total_possible": result.TotalPossible,
			"percentage":     result.Percentage,
			"passed":         result.Passed,
		}
		ok, err := s.AttemptRepo.TransitionStatus(tx, attemptID, model.AttemptInProgress, updates)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrAttemptNotEditable
		}

		responses := make([]model.AssessmentResponse, 0, len(result.Grades))
		for _, grade := range result.Grades {
			resp := responseByQuestion[grade.QuestionID]
			if resp == nil {
				resp = &model.AssessmentResponse{
					AttemptID:  attemptID,
					QuestionID: grade.QuestionID,
					AnswerData: answerByQuestion[grade.QuestionID],
				}
			} else {
				resp.AnswerData = answerByQuestion[grade.QuestionID]
			}
			resp.IsCorrect = grade.IsCorrect
			points := grade.PointsEarned
			resp.PointsEarned = &points
			resp.AutoGraded = grade.AutoGraded
			if grade.AutoGraded {
				resp.GradedAt = &now
			}
			responses = append(responses, *resp)
		}
		if err := s.AttemptRepo.SaveResponses(tx, responses); err != nil {
			return err
		}

		// All-objective assessments finalize immediately; otherwise the
		// attempt waits in the manual queue with provisional scores.
		if !result.NeedsManual {
			ok, err := s.AttemptRepo.TransitionStatus(tx, attemptID, model.AttemptSubmitted, map[string]interface{}{
				"status":    model.AttemptGraded,
				"graded_at": now,
			})
			if err != nil {
				return err
			}
			if !ok {
				return util.ErrAttemptNotEditable
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsSubmitted.Inc()
	if !result.NeedsManual {
		monitoring.AttemptsGraded.Inc()
		s.invalidateAnalytics(attempt.AssessmentID)
	}
	return s.AttemptRepo.FindByID(attemptID)
}

type GradedResponseRequest struct {
	QuestionID   uint    `json:"questionId" binding:"required"`
	PointsEarned float64 `json:"pointsEarned"`
	Feedback     string  `json:"feedback"`
}

// GradeAttempt applies a human grader's points to a submitted attempt and
// finalizes it. Only submitted attempts qualify: grading twice is refused so
// there is a single authoritative pass.
func (s *GradingService) GradeAttempt(graderID, attemptID uint, graded []GradedResponseRequest) (*model.AssessmentAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.Status != model.AttemptSubmitted {
		return nil, util.ErrAttemptNotEditable
	}
	assessment, err := s.AssessmentRepo.FindAssessmentByID(attempt.AssessmentID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	questions, err := s.AssessmentRepo.ListQuestions(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	questionByID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}
	responses, err := s.AttemptRepo.GetResponses(attemptID)
	if err != nil {
		return nil, err
	}
	responseByQuestion := make(map[uint]*model.AssessmentResponse, len(responses))
	for i := range responses {
		responseByQuestion[responses[i].QuestionID] = &responses[i]
	}

	now := time.Now()
	for _, g := range graded {
		q, ok := questionByID[g.QuestionID]
		if !ok {
			return nil, util.ErrQuestionNotFound
		}
		resp := responseByQuestion[g.QuestionID]
		if resp == nil {
			return nil, util.Validationf("question %d has no response on this attempt", g.QuestionID)
		}
		if g.PointsEarned < 0 || g.PointsEarned > q.Points {
			return nil, util.Validationf("points for question %d must be between 0 and %g", g.QuestionID, q.Points)
		}
		points := g.PointsEarned
		resp.PointsEarned = &points
		resp.Feedback = g.Feedback
		resp.GradedBy = &graderID
		resp.GradedAt = &now
	}

	// Union of auto and manual points; ungraded leftovers still count zero.
	var score float64
	for _, resp := range responses {
		if resp.PointsEarned != nil {
			score += *resp.PointsEarned
		}
	}
	percentage, passed := Aggregate(score, assessment.TotalPoints, assessment.PassingScore)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.AttemptRepo.SaveResponses(tx, responses); err != nil {
			return err
		}
		ok, err := s.AttemptRepo.TransitionStatus(tx, attemptID, model.AttemptSubmitted, map[string]interface{}{
			"status":         model.AttemptGraded,
			"graded_at":      now,
			"score":          score,
			"total_possible": assessment.TotalPoints,
			"percentage":     percentage,
			"passed":         passed,
		})
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrAttemptNotEditable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsGraded.Inc()
	s.invalidateAnalytics(attempt.AssessmentID)
	return s.AttemptRepo.FindByID(attemptID)
}

type PendingAttempt struct {
	Attempt          model.AssessmentAttempt `json:"attempt"`
	PendingQuestions int                     `json:"pendingQuestions"`
}

// ListPendingManual is the manual grading queue: submitted attempts with
// their count of still-ungraded subjective responses.
func (s *GradingService) ListPendingManual(assessmentID uint, page, limit int) ([]PendingAttempt, int64, error) {
	attempts, total, err := s.AttemptRepo.ListByAssessment(assessmentID, model.AttemptSubmitted, page, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(attempts))
	for i, a := range attempts {
		ids[i] = a.ID
	}
	responses, err := s.AttemptRepo.GetResponsesByAttemptIDs(ids)
	if err != nil {
		return nil, 0, err
	}
	pendingByAttempt := make(map[uint]int)
	for _, r := range responses {
		if !r.AutoGraded && r.GradedBy == nil {
			pendingByAttempt[r.AttemptID]++
		}
	}

	queue := make([]PendingAttempt, len(attempts))
	for i, a := range attempts {
		queue[i] = PendingAttempt{Attempt: a, PendingQuestions: pendingByAttempt[a.ID]}
	}
	return queue, total, nil
}

func (s *GradingService) invalidateAnalytics(assessmentID uint) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), analyticsCacheKey(assessmentID))
}
