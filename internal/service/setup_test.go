package service

import (
	"encoding/json"
	"testing"

	"lms_assessment_backend/internal/config"
	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db          *gorm.DB
	assessments *AssessmentService
	attempts    *AttemptService
	grading     *GradingService
	rubrics     *RubricService
	analytics   *AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// 内存库绑定单连接，避免连接池各自拿到一份空库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// User 的列类型是 MySQL 专用（enum），测试里用不到用户表
	require.NoError(t, db.AutoMigrate(
		&model.Assessment{},
		&model.Question{},
		&model.AssessmentAttempt{},
		&model.AssessmentResponse{},
		&model.Rubric{},
		&model.RubricCriterion{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{}
	cfg.Grading.ExpiryGraceSeconds = 30
	cfg.Grading.AnalyticsCacheTTLSeconds = 300

	assessmentRepo := repository.NewAssessmentRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	rubricRepo := repository.NewRubricRepository(db)

	attempts := NewAttemptService(attemptRepo, assessmentRepo, cfg, db)
	return &testEnv{
		db:          db,
		assessments: NewAssessmentService(assessmentRepo, db),
		attempts:    attempts,
		grading:     NewGradingService(attemptRepo, assessmentRepo, attempts, nil, db),
		rubrics:     NewRubricService(rubricRepo),
		analytics:   NewAnalyticsService(attemptRepo, assessmentRepo, nil, cfg),
	}
}

// createPublishedAssessment builds a two-question (choice + true/false)
// assessment worth 10 points with a 60% passing score.
func (e *testEnv) createPublishedAssessment(t *testing.T, maxAttempts *int) *model.Assessment {
	t.Helper()

	passing := 60.0
	a, err := e.assessments.CreateAssessment(AssessmentRequest{
		CourseID:     1,
		Title:        "unit quiz",
		PassingScore: &passing,
		MaxAttempts:  maxAttempts,
	})
	require.NoError(t, err)

	mcData, _ := json.Marshal(model.MultipleChoiceData{Options: []model.ChoiceOption{
		{ID: "a", Text: "2"},
		{ID: "b", Text: "4", Correct: true},
	}})
	_, err = e.assessments.AddQuestion(a.ID, QuestionRequest{
		QuestionType: model.MultipleChoice,
		Prompt:       "2+2?",
		Data:         mcData,
		Points:       5,
	})
	require.NoError(t, err)

	tfData, _ := json.Marshal(model.TrueFalseData{CorrectAnswer: true})
	_, err = e.assessments.AddQuestion(a.ID, QuestionRequest{
		QuestionType: model.TrueFalse,
		Prompt:       "Go has garbage collection",
		Data:         tfData,
		Points:       5,
	})
	require.NoError(t, err)

	a, err = e.assessments.PublishAssessment(a.ID, true)
	require.NoError(t, err)
	return a
}

// createMixedAssessment builds a choice (5pt) + essay (5pt) assessment.
func (e *testEnv) createMixedAssessment(t *testing.T) *model.Assessment {
	t.Helper()

	passing := 60.0
	a, err := e.assessments.CreateAssessment(AssessmentRequest{
		CourseID:     1,
		Title:        "mixed quiz",
		PassingScore: &passing,
	})
	require.NoError(t, err)

	mcData, _ := json.Marshal(model.MultipleChoiceData{Options: []model.ChoiceOption{
		{ID: "a", Text: "2"},
		{ID: "b", Text: "4", Correct: true},
	}})
	_, err = e.assessments.AddQuestion(a.ID, QuestionRequest{
		QuestionType: model.MultipleChoice,
		Prompt:       "2+2?",
		Data:         mcData,
		Points:       5,
	})
	require.NoError(t, err)

	_, err = e.assessments.AddQuestion(a.ID, QuestionRequest{
		QuestionType: model.Essay,
		Prompt:       "Explain pointers",
		Data:         json.RawMessage(`{"sampleAnswer":"addresses"}`),
		Points:       5,
	})
	require.NoError(t, err)

	a, err = e.assessments.PublishAssessment(a.ID, true)
	require.NoError(t, err)
	return a
}

func (e *testEnv) questionIDs(t *testing.T, assessmentID uint) []uint {
	t.Helper()
	qs, err := e.assessments.ListQuestions(assessmentID)
	require.NoError(t, err)
	ids := make([]uint, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

func intPtr(v int) *int { return &v }
