package service

import (
	"testing"

	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAttemptAllObjective(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPublishedAssessment(t, nil)
	qids := env.questionIDs(t, a.ID)

	attempt, err := env.attempts.StartAttempt(10, a.ID)
	require.NoError(t, err)

	graded, err := env.grading.SubmitAttempt(10, attempt.ID, []SaveResponseRequest{
		{QuestionID: qids[0], AnswerData: choiceAnswer("b")},
		{QuestionID: qids[1], AnswerData: boolAnswer(true)},
	})
	require.NoError(t, err)

	// 全客观题：提交即定稿
	assert.Equal(t, model.AttemptGraded, graded.Status)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 10.0, *graded.Score)
	assert.Equal(t, 100.0, *graded.Percentage)
	require.NotNil(t, graded.Passed)
	assert.True(t, *graded.Passed)
	assert.NotNil(t, graded.SubmittedAt)
	assert.NotNil(t, graded.GradedAt)

	detail, err := env.attempts.GetAttempt(attempt.ID, 10, false)
	require.NoError(t, err)
	require.Len(t, detail.Responses, 2)
	for _, r := range detail.Responses {
		assert.True(t, r.AutoGraded)
		require.NotNil(t, r.IsCorrect)
		assert.True(t, *r.IsCorrect)
	}
}

func TestSubmitAttemptPartialScoreFails(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPublishedAssessment(t, nil)
	qids := env.questionIDs(t, a.ID)

	attempt, err := env.attempts.StartAttempt(10, a.ID)
	require.NoError(t, err)

	graded, err := env.grading.SubmitAttempt(10, attempt.ID, []SaveResponseRequest{
		{QuestionID: qids[0], AnswerData: choiceAnswer("a")}, // wrong
		{QuestionID: qids[1], AnswerData: boolAnswer(true)},  // right
	})
	require.NoError(t, err)

	assert.Equal(t, model.AttemptGraded, graded.Status)
	assert.Equal(t, 5.0, *graded.Score)
	assert.Equal(t, 50.0, *graded.Percentage)
	assert.False(t, *graded.Passed)
}

func TestSubmitAttemptMergesSavedAnswers(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPublishedAssessment(t, nil)
	qids := env.questionIDs(t, a.ID)

	attempt, err := env.attempts.StartAttempt(10, a.ID)
	require.NoError(t, err)

	// 先保存一题，提交时只带另一题
	_, err = env.attempts.SaveResponse(10, attempt.ID, SaveResponseRequest{
		QuestionID: qids[0],
		AnswerData: choiceAnswer("b"),
	})
	require.NoError(t, err)

	graded, err := env.grading.SubmitAttempt(10, attempt.ID, []SaveResponseRequest{
		{QuestionID: qids[1], AnswerData: boolAnswer(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, *graded.Score)
}

func TestSubmitAttemptUnansweredEarnsZero(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPublishedAssessment(t, nil)

	attempt, err := env.attempts.StartAttempt(10, a.ID)
	require.NoError(t, err)

	graded, err := env.grading.SubmitAttempt(10, attempt.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, model.AttemptGraded, graded.Status)
	assert.Equal(t, 0.0, *graded.Score)
	assert.False(t, *graded.Passed)

	// 未作答的题目也会落一条零分记录
	detail, err := env.attempts.GetAttempt(attempt.ID, 10, false)
	require.NoError(t, err)
	assert.Len(t, detail.Responses, 2)
}

func TestSubmitAttemptDoubleSubmit(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPublishedAssessment(t, nil)

	attempt, err := env.attempts.StartAttempt(10, a.ID)
	require.NoError(t, err)

	_, err = env.grading.SubmitAttempt(10, attempt.ID, nil)
	require.NoError(t, err)

	_, err = env.grading.SubmitAttempt(10, attempt.ID, nil)
	assert.ErrorIs(t, err, util.ErrAttemptNotEditable)
}

func TestSubmitAttemptGuards(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPublishedAssessment(t, nil)
	qids := env.questionIDs(t, a.ID)

	attempt, err := env.attempts.StartAttempt(10, a.ID)
	require.NoError(t, err)

	_, err = env.grading.SubmitAttempt(11, attempt.ID, nil)
	assert.ErrorIs(t, err, util.ErrNotAttemptOwner)

	_, err = env.grading.SubmitAttempt(10, attempt.ID, []SaveResponseRequest{
		{QuestionID: qids[0] + 999, AnswerData: choiceAnswer("a")},
	})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)

	_, err = env.grading.SubmitAttempt(10, attempt.ID, []SaveResponseRequest{
		{QuestionID: qids[0], AnswerData: []byte(`{}`)},
	})
	assert.ErrorIs(t, err, util.ErrValidation)

	// 校验失败不应改变状态
	reloaded, err := env.attempts.GetAttempt(attempt.ID, 10, false)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptInProgress, reloaded.Attempt.Status)
}

func TestManualGradingFlow(t *testing.T) {
	env := newTestEnv(t)
	a := env.createMixedAssessment(t)
	qids := env.questionIDs(t, a.ID)

	attempt, err := env.attempts.StartAttempt(10, a.ID)
	require.NoError(t, err)

	submitted, err := env.grading.SubmitAttempt(10, attempt.ID, []SaveResponseRequest{
		{QuestionID: qids[0], AnswerData: choiceAnswer("b")},
		{QuestionID: qids[1], AnswerData: textAnswer("pointers hold addresses")},
	})
	require.NoError(t, err)

	// 含主观题：停在 submitted，分数为临时分
	assert.Equal(t, model.AttemptSubmitted, submitted.Status)
	assert.Equal(t, 5.0, *submitted.Score)
	assert.Equal(t, 50.0, *submitted.Percentage)
	assert.Nil(t, submitted.GradedAt)

	queue, total, err := env.grading.ListPendingManual(a.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, queue, 1)
	assert.Equal(t, attempt.ID, queue[0].Attempt.ID)
	assert.Equal(t, 1, queue[0].PendingQuestions)

	graded, err := env.grading.GradeAttempt(99, attempt.ID, []GradedResponseRequest{
		{QuestionID: qids[1], PointsEarned: 3, Feedback: "solid but brief"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.AttemptGraded, graded.Status)
	assert.Equal(t, 8.0, *graded.Score)
	assert.Equal(t, 80.0, *graded.Percentage)
	assert.True(t, *graded.Passed)
	assert.NotNil(t, graded.GradedAt)

	detail, err := env.attempts.GetAttempt(attempt.ID, 10, false)
	require.NoError(t, err)
	for _, r := range detail.Responses {
		if r.QuestionID == qids[1] {
			require.NotNil(t, r.GradedBy)
			assert.Equal(t, uint(99), *r.GradedBy)
			assert.Equal(t, "solid but brief", r.Feedback)
			assert.Equal(t, 3.0, *r.PointsEarned)
		}
	}

	// 队列清空
	_, total, err = env.grading.ListPendingManual(a.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// 定稿后不能再次人工评分
	_, err = env.grading.GradeAttempt(99, attempt.ID, nil)
	assert.ErrorIs(t, err, util.ErrAttemptNotEditable)
}

func TestGradeAttemptGuards(t *testing.T) {
	env := newTestEnv(t)
	a := env.createMixedAssessment(t)
	qids := env.questionIDs(t, a.ID)

	attempt, err := env.attempts.StartAttempt(10, a.ID)
	require.NoError(t, err)

	// 未提交不可评分
	_, err = env.grading.GradeAttempt(99, attempt.ID, nil)
	assert.ErrorIs(t, err, util.ErrAttemptNotEditable)

	_, err = env.grading.SubmitAttempt(10, attempt.ID, []SaveResponseRequest{
		{QuestionID: qids[1], AnswerData: textAnswer("essay text")},
	})
	require.NoError(t, err)

	// 超出题目满分
	_, err = env.grading.GradeAttempt(99, attempt.ID, []GradedResponseRequest{
		{QuestionID: qids[1], PointsEarned: 7},
	})
	assert.ErrorIs(t, err, util.ErrValidation)

	// 负分
	_, err = env.grading.GradeAttempt(99, attempt.ID, []GradedResponseRequest{
		{QuestionID: qids[1], PointsEarned: -1},
	})
	assert.ErrorIs(t, err, util.ErrValidation)

	// 不存在的题目
	_, err = env.grading.GradeAttempt(99, attempt.ID, []GradedResponseRequest{
		{QuestionID: qids[1] + 999, PointsEarned: 1},
	})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}
