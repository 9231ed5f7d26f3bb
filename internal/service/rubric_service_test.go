package service

import (
	"testing"

	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRubric() *model.Rubric {
	c1 := model.RubricCriterion{Description: "correctness", MaxPoints: 5, OrderIndex: 1}
	c1.ID = 1
	c2 := model.RubricCriterion{Description: "style", MaxPoints: 3, OrderIndex: 2}
	c2.ID = 2
	r := &model.Rubric{Title: "code review", Criteria: []model.RubricCriterion{c1, c2}}
	r.ID = 7
	return r
}

func TestEvaluateRubric(t *testing.T) {
	rubric := testRubric()

	tests := []struct {
		name       string
		selections map[uint]float64
		want       float64
		wantErr    bool
	}{
		{
			name:       "full marks",
			selections: map[uint]float64{1: 5, 2: 3},
			want:       8,
		},
		{
			name:       "partial selection counts missing as zero",
			selections: map[uint]float64{1: 4},
			want:       4,
		},
		{
			name:       "over-max clamps to criterion maximum",
			selections: map[uint]float64{1: 9, 2: 3},
			want:       8,
		},
		{
			name:       "negative floors at zero",
			selections: map[uint]float64{1: -2, 2: 2},
			want:       2,
		},
		{
			name:       "unknown criterion rejected",
			selections: map[uint]float64{99: 1},
			wantErr:    true,
		},
		{
			name:       "empty selection scores zero",
			selections: map[uint]float64{},
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := EvaluateRubric(rubric, tt.selections)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, util.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestRubricCRUD(t *testing.T) {
	env := newTestEnv(t)
	a := env.createMixedAssessment(t)

	created, err := env.rubrics.CreateRubric(RubricRequest{
		AssessmentID: &a.ID,
		Title:        "essay rubric",
		Criteria: []RubricCriterionRequest{
			{Description: "correctness", MaxPoints: 3},
			{Description: "clarity", MaxPoints: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, created.Criteria, 2)
	assert.Equal(t, 1, created.Criteria[0].OrderIndex)
	assert.Equal(t, 2, created.Criteria[1].OrderIndex)

	listed, err := env.rubrics.ListRubrics(a.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// 更新整体替换条目
	updated, err := env.rubrics.UpdateRubric(created.ID, RubricRequest{
		AssessmentID: &a.ID,
		Title:        "essay rubric v2",
		Criteria: []RubricCriterionRequest{
			{Description: "depth", MaxPoints: 5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "essay rubric v2", updated.Title)
	require.Len(t, updated.Criteria, 1)
	assert.Equal(t, "depth", updated.Criteria[0].Description)

	total, err := env.rubrics.Evaluate(created.ID, RubricEvaluationRequest{
		Selections: map[uint]float64{updated.Criteria[0].ID: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, total)

	require.NoError(t, env.rubrics.DeleteRubric(created.ID))
	_, err = env.rubrics.GetRubric(created.ID)
	assert.ErrorIs(t, err, util.ErrRubricNotFound)
}

func TestRubricRequestValidate(t *testing.T) {
	assert.ErrorIs(t, RubricRequest{Title: "empty"}.validate(), util.ErrValidation)

	bad := RubricRequest{Title: "bad", Criteria: []RubricCriterionRequest{{Description: "x", MaxPoints: 0}}}
	assert.ErrorIs(t, bad.validate(), util.ErrValidation)

	good := RubricRequest{Title: "good", Criteria: []RubricCriterionRequest{{Description: "x", MaxPoints: 2}}}
	assert.NoError(t, good.validate())
}
