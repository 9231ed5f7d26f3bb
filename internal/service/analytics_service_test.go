package service

import (
	"testing"

	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAnalyticsEmpty(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPublishedAssessment(t, nil)

	stats, err := env.analytics.GetAnalytics(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.GradedAttempts)
	assert.Equal(t, 0.0, stats.MeanPercentage)
	assert.Equal(t, 0.0, stats.PassRate)
	assert.Empty(t, stats.QuestionDifficulty)

	_, err = env.analytics.GetAnalytics(a.ID + 999)
	assert.ErrorIs(t, err, util.ErrAssessmentNotFound)
}

func TestGetAnalyticsGradedOnly(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPublishedAssessment(t, nil)
	qids := env.questionIDs(t, a.ID)

	// 学生10：满分定稿
	first, err := env.attempts.StartAttempt(10, a.ID)
	require.NoError(t, err)
	_, err = env.grading.SubmitAttempt(10, first.ID, []SaveResponseRequest{
		{QuestionID: qids[0], AnswerData: choiceAnswer("b")},
		{QuestionID: qids[1], AnswerData: boolAnswer(true)},
	})
	require.NoError(t, err)

	// 学生11：半分定稿
	second, err := env.attempts.StartAttempt(11, a.ID)
	require.NoError(t, err)
	_, err = env.grading.SubmitAttempt(11, second.ID, []SaveResponseRequest{
		{QuestionID: qids[0], AnswerData: choiceAnswer("a")},
		{QuestionID: qids[1], AnswerData: boolAnswer(true)},
	})
	require.NoError(t, err)

	// 学生12：进行中，不进统计
	_, err = env.attempts.StartAttempt(12, a.ID)
	require.NoError(t, err)

	stats, err := env.analytics.GetAnalytics(a.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.GradedAttempts)
	assert.Equal(t, 75.0, stats.MeanPercentage)
	assert.Equal(t, 0.5, stats.PassRate)
	assert.Equal(t, map[int]int{1: 2}, stats.AttemptDistribution)

	require.Len(t, stats.QuestionDifficulty, 2)
	byQuestion := make(map[uint]QuestionDifficulty)
	for _, d := range stats.QuestionDifficulty {
		byQuestion[d.QuestionID] = d
	}
	assert.Equal(t, 0.5, byQuestion[qids[0]].CorrectRate)
	assert.Equal(t, 1.0, byQuestion[qids[1]].CorrectRate)
}

func TestGetAnalyticsExcludesSubjectiveDifficulty(t *testing.T) {
	env := newTestEnv(t)
	a := env.createMixedAssessment(t)
	qids := env.questionIDs(t, a.ID)

	attempt, err := env.attempts.StartAttempt(10, a.ID)
	require.NoError(t, err)
	_, err = env.grading.SubmitAttempt(10, attempt.ID, []SaveResponseRequest{
		{QuestionID: qids[0], AnswerData: choiceAnswer("b")},
		{QuestionID: qids[1], AnswerData: textAnswer("essay")},
	})
	require.NoError(t, err)
	_, err = env.grading.GradeAttempt(99, attempt.ID, []GradedResponseRequest{
		{QuestionID: qids[1], PointsEarned: 4},
	})
	require.NoError(t, err)

	stats, err := env.analytics.GetAnalytics(a.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.GradedAttempts)
	// 难度只统计客观题
	require.Len(t, stats.QuestionDifficulty, 1)
	assert.Equal(t, qids[0], stats.QuestionDifficulty[0].QuestionID)
	assert.Equal(t, model.MultipleChoice, stats.QuestionDifficulty[0].QuestionType)
	assert.Equal(t, 1.0, stats.QuestionDifficulty[0].CorrectRate)
}
