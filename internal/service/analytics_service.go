package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lms_assessment_backend/internal/config"
	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/repository"
	"lms_assessment_backend/internal/util"
	"lms_assessment_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AnalyticsService derives assessment-level statistics from finalized
// attempts. Read-only: it never mutates an attempt, and it ignores
// in_progress/submitted/expired attempts so provisional zeros cannot skew
// the numbers. Results are cached in Redis until the next finalization.
type AnalyticsService struct {
	AttemptRepo    *repository.AttemptRepository
	AssessmentRepo *repository.AssessmentRepository
	Redis          *redis.Client
	Config         *config.Config
}

func NewAnalyticsService(attemptRepo *repository.AttemptRepository, assessmentRepo *repository.AssessmentRepository, rdb *redis.Client, cfg *config.Config) *AnalyticsService {
	return &AnalyticsService{
		AttemptRepo:    attemptRepo,
		AssessmentRepo: assessmentRepo,
		Redis:          rdb,
		Config:         cfg,
	}
}

type QuestionDifficulty struct {
	QuestionID   uint               `json:"questionId"`
	QuestionType model.QuestionType `json:"questionType"`
	OrderIndex   int                `json:"orderIndex"`
	// CorrectRate is the fraction of graded attempts answering correctly;
	// only machine-gradable questions carry one.
	CorrectRate float64 `json:"correctRate"`
}

type AssessmentAnalytics struct {
	AssessmentID        uint                 `json:"assessmentId"`
	GradedAttempts      int                  `json:"gradedAttempts"`
	MeanPercentage      float64              `json:"meanPercentage"`
	PassRate            float64              `json:"passRate"`
	QuestionDifficulty  []QuestionDifficulty `json:"questionDifficulty"`
	AttemptDistribution map[int]int          `json:"attemptDistribution"`
}

func analyticsCacheKey(assessmentID uint) string {
	return fmt.Sprintf("assessment_stats:%d", assessmentID)
}

func (s *AnalyticsService) GetAnalytics(assessmentID uint) (*AssessmentAnalytics, error) {
	if _, err := s.AssessmentRepo.FindAssessmentByID(assessmentID); err != nil {
		return nil, util.ErrAssessmentNotFound
	}

	ctx := context.Background()
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, analyticsCacheKey(assessmentID)).Result(); err == nil {
			var stats AssessmentAnalytics
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.compute(assessmentID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			ttl := time.Duration(s.Config.Grading.AnalyticsCacheTTLSeconds) * time.Second
			if err := s.Redis.Set(ctx, analyticsCacheKey(assessmentID), payload, ttl).Err(); err != nil {
				logger.Log.Warn("analytics cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

func (s *AnalyticsService) compute(assessmentID uint) (*AssessmentAnalytics, error) {
	attempts, err := s.AttemptRepo.ListGradedByAssessment(assessmentID)
	if err != nil {
		return nil, err
	}
	questions, err := s.AssessmentRepo.ListQuestions(assessmentID)
	if err != nil {
		return nil, err
	}

	stats := &AssessmentAnalytics{
		AssessmentID:        assessmentID,
		GradedAttempts:      len(attempts),
		AttemptDistribution: make(map[int]int),
	}
	if len(attempts) == 0 {
		return stats, nil
	}

	var percentageSum float64
	passed := 0
	attemptIDs := make([]uint, len(attempts))
	for i, a := range attempts {
		attemptIDs[i] = a.ID
		if a.Percentage != nil {
			percentageSum += *a.Percentage
		}
		if a.Passed != nil && *a.Passed {
			passed++
		}
		stats.AttemptDistribution[a.AttemptNumber]++
	}
	stats.MeanPercentage = percentageSum / float64(len(attempts))
	stats.PassRate = float64(passed) / float64(len(attempts))

	responses, err := s.AttemptRepo.GetResponsesByAttemptIDs(attemptIDs)
	if err != nil {
		return nil, err
	}
	correctByQuestion := make(map[uint]int)
	answeredByQuestion := make(map[uint]int)
	for _, r := range responses {
		if !r.AutoGraded {
			continue
		}
		answeredByQuestion[r.QuestionID]++
		if r.IsCorrect != nil && *r.IsCorrect {
			correctByQuestion[r.QuestionID]++
		}
	}

	for _, q := range questions {
		if !q.QuestionType.AutoGradable() {
			continue
		}
		d := QuestionDifficulty{
			QuestionID:   q.ID,
			QuestionType: q.QuestionType,
			OrderIndex:   q.OrderIndex,
		}
		if n := answeredByQuestion[q.ID]; n > 0 {
			d.CorrectRate = float64(correctByQuestion[q.ID]) / float64(n)
		}
		stats.QuestionDifficulty = append(stats.QuestionDifficulty, d)
	}
	return stats, nil
}
