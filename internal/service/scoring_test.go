package service

import (
	"encoding/json"
	"testing"

	"lms_assessment_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mcQuestion(id uint, points float64, correctOption string) model.Question {
	data, _ := json.Marshal(model.MultipleChoiceData{Options: []model.ChoiceOption{
		{ID: "a", Text: "first", Correct: correctOption == "a"},
		{ID: "b", Text: "second", Correct: correctOption == "b"},
		{ID: "c", Text: "third", Correct: correctOption == "c"},
	}})
	q := model.Question{QuestionType: model.MultipleChoice, Points: points, Data: data}
	q.ID = id
	return q
}

func tfQuestion(id uint, points float64, answer bool) model.Question {
	data, _ := json.Marshal(model.TrueFalseData{CorrectAnswer: answer})
	q := model.Question{QuestionType: model.TrueFalse, Points: points, Data: data}
	q.ID = id
	return q
}

func essayQuestion(id uint, points float64) model.Question {
	q := model.Question{QuestionType: model.Essay, Points: points, Data: json.RawMessage(`{}`)}
	q.ID = id
	return q
}

func choiceAnswer(optionID string) json.RawMessage {
	raw, _ := json.Marshal(model.ChoiceAnswer{OptionID: optionID})
	return raw
}

func boolAnswer(v bool) json.RawMessage {
	raw, _ := json.Marshal(model.BoolAnswer{Value: v})
	return raw
}

func textAnswer(text string) json.RawMessage {
	raw, _ := json.Marshal(model.TextAnswer{Text: text})
	return raw
}

func TestGradeQuestion(t *testing.T) {
	tests := []struct {
		name        string
		question    model.Question
		answer      json.RawMessage
		wantPoints  float64
		wantCorrect *bool
		wantManual  bool
	}{
		{
			name:        "correct choice",
			question:    mcQuestion(1, 5, "b"),
			answer:      choiceAnswer("b"),
			wantPoints:  5,
			wantCorrect: boolPtr(true),
		},
		{
			name:        "wrong choice",
			question:    mcQuestion(1, 5, "b"),
			answer:      choiceAnswer("a"),
			wantPoints:  0,
			wantCorrect: boolPtr(false),
		},
		{
			name:        "missing answer counts incorrect",
			question:    mcQuestion(1, 5, "b"),
			answer:      nil,
			wantPoints:  0,
			wantCorrect: boolPtr(false),
		},
		{
			name:        "malformed answer counts incorrect",
			question:    mcQuestion(1, 5, "b"),
			answer:      json.RawMessage(`{"optionId"`),
			wantPoints:  0,
			wantCorrect: boolPtr(false),
		},
		{
			name:        "true false correct",
			question:    tfQuestion(2, 3, true),
			answer:      boolAnswer(true),
			wantPoints:  3,
			wantCorrect: boolPtr(true),
		},
		{
			name:        "true false wrong",
			question:    tfQuestion(2, 3, true),
			answer:      boolAnswer(false),
			wantPoints:  0,
			wantCorrect: boolPtr(false),
		},
		{
			name:       "essay needs manual grading",
			question:   essayQuestion(3, 10),
			answer:     textAnswer("long answer"),
			wantPoints: 0,
			wantManual: true,
		},
		{
			name:       "unanswered essay still needs manual grading",
			question:   essayQuestion(3, 10),
			answer:     nil,
			wantPoints: 0,
			wantManual: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grade, err := GradeQuestion(tt.question, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.question.ID, grade.QuestionID)
			assert.Equal(t, tt.wantPoints, grade.PointsEarned)
			assert.Equal(t, tt.wantCorrect, grade.IsCorrect)
			assert.Equal(t, tt.wantManual, grade.NeedsManual)
			assert.Equal(t, tt.wantCorrect != nil, grade.AutoGraded)
		})
	}
}

func TestGradeQuestionBadQuestionData(t *testing.T) {
	q := model.Question{QuestionType: model.MultipleChoice, Points: 5, Data: json.RawMessage(`{`)}
	q.ID = 9
	_, err := GradeQuestion(q, choiceAnswer("a"))
	assert.Error(t, err)
}

func TestScoreAttemptAllObjective(t *testing.T) {
	passing := 60.0
	assessment := &model.Assessment{TotalPoints: 10, PassingScore: &passing}
	questions := []model.Question{
		mcQuestion(1, 5, "b"),
		tfQuestion(2, 5, true),
	}

	t.Run("full marks pass", func(t *testing.T) {
		result, err := ScoreAttempt(assessment, questions, map[uint]json.RawMessage{
			1: choiceAnswer("b"),
			2: boolAnswer(true),
		})
		require.NoError(t, err)
		assert.Equal(t, 10.0, result.Score)
		assert.Equal(t, 10.0, result.TotalPossible)
		assert.Equal(t, 100.0, result.Percentage)
		assert.True(t, result.Passed)
		assert.False(t, result.NeedsManual)
		assert.Len(t, result.Grades, 2)
	})

	t.Run("half marks fail", func(t *testing.T) {
		result, err := ScoreAttempt(assessment, questions, map[uint]json.RawMessage{
			1: choiceAnswer("a"),
			2: boolAnswer(true),
		})
		require.NoError(t, err)
		assert.Equal(t, 5.0, result.Score)
		assert.Equal(t, 50.0, result.Percentage)
		assert.False(t, result.Passed)
	})

	t.Run("exact threshold passes", func(t *testing.T) {
		threshold := 50.0
		a := &model.Assessment{TotalPoints: 10, PassingScore: &threshold}
		result, err := ScoreAttempt(a, questions, map[uint]json.RawMessage{
			1: choiceAnswer("b"),
		})
		require.NoError(t, err)
		assert.Equal(t, 50.0, result.Percentage)
		assert.True(t, result.Passed)
	})
}

func TestScoreAttemptMixed(t *testing.T) {
	passing := 60.0
	assessment := &model.Assessment{TotalPoints: 10, PassingScore: &passing}
	questions := []model.Question{
		mcQuestion(1, 5, "b"),
		essayQuestion(2, 5),
	}

	result, err := ScoreAttempt(assessment, questions, map[uint]json.RawMessage{
		1: choiceAnswer("b"),
		2: textAnswer("free text"),
	})
	require.NoError(t, err)
	assert.True(t, result.NeedsManual)
	assert.Equal(t, 5.0, result.Score) // essay provisionally zero
	assert.Equal(t, 50.0, result.Percentage)
}

func TestAggregate(t *testing.T) {
	passing := 70.0

	percentage, passed := Aggregate(8, 10, &passing)
	assert.Equal(t, 80.0, percentage)
	assert.True(t, passed)

	percentage, passed = Aggregate(6, 10, &passing)
	assert.Equal(t, 60.0, percentage)
	assert.False(t, passed)

	// 未设置及格线：一律通过
	percentage, passed = Aggregate(0, 10, nil)
	assert.Equal(t, 0.0, percentage)
	assert.True(t, passed)

	// 零分测验：0%，及格与否取决于及格线
	percentage, passed = Aggregate(0, 0, &passing)
	assert.Equal(t, 0.0, percentage)
	assert.False(t, passed)
}

func boolPtr(v bool) *bool { return &v }
