package service

import (
	"encoding/json"

	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/util"
)

// Scoring is pure: it reads question definitions and recorded answers and
// produces per-question grades plus the attempt aggregate. Persistence is the
// callers' problem, which keeps the grading rules testable without a database.

type QuestionGrade struct {
	QuestionID   uint
	IsCorrect    *bool // nil for subjective questions awaiting a grader
	PointsEarned float64
	AutoGraded   bool
	NeedsManual  bool
}

type AttemptScore struct {
	Score         float64
	TotalPossible float64
	Percentage    float64
	Passed        bool
	NeedsManual   bool
	Grades        []QuestionGrade
}

// GradeQuestion applies the question's own grading rule to one recorded
// answer. A missing answer (len(raw) == 0) earns zero credit and, for
// objective types, counts as incorrect rather than blocking submission.
func GradeQuestion(q model.Question, raw json.RawMessage) (QuestionGrade, error) {
	grade := QuestionGrade{QuestionID: q.ID}

	data, err := model.DecodeQuestionData(q.QuestionType, q.Data)
	if err != nil {
		return grade, util.Validationf("question %d: %v", q.ID, err)
	}

	switch d := data.(type) {
	case model.MultipleChoiceData:
		grade.AutoGraded = true
		correct := false
		if len(raw) > 0 {
			if ans, err := model.DecodeAnswerData(q.QuestionType, raw); err == nil {
				if correctID, ok := d.CorrectOptionID(); ok {
					correct = ans.(model.ChoiceAnswer).OptionID == correctID
				}
			}
		}
		grade.IsCorrect = &correct
		if correct {
			grade.PointsEarned = q.Points
		}
	case model.TrueFalseData:
		grade.AutoGraded = true
		correct := false
		if len(raw) > 0 {
			if ans, err := model.DecodeAnswerData(q.QuestionType, raw); err == nil {
				correct = ans.(model.BoolAnswer).Value == d.CorrectAnswer
			}
		}
		grade.IsCorrect = &correct
		if correct {
			grade.PointsEarned = q.Points
		}
	case model.SubjectiveData:
		// Provisional zero until a human grader acts; IsCorrect stays nil.
		grade.NeedsManual = true
	}

	return grade, nil
}

// ScoreAttempt grades every question on the assessment against the recorded
// answers (keyed by question id) and aggregates the provisional score.
func ScoreAttempt(assessment *model.Assessment, questions []model.Question, answers map[uint]json.RawMessage) (AttemptScore, error) {
	result := AttemptScore{
		TotalPossible: assessment.TotalPoints,
		Grades:        make([]QuestionGrade, 0, len(questions)),
	}

	for _, q := range questions {
		grade, err := GradeQuestion(q, answers[q.ID])
		if err != nil {
			return AttemptScore{}, err
		}
		result.Score += grade.PointsEarned
		if grade.NeedsManual {
			result.NeedsManual = true
		}
		result.Grades = append(result.Grades, grade)
	}

	result.Percentage, result.Passed = Aggregate(result.Score, result.TotalPossible, assessment.PassingScore)
	return result, nil
}

// Aggregate computes percentage and pass/fail from a raw score. An unset
// passing score means everyone passes; a zero-point assessment scores 0%.
func Aggregate(score, totalPossible float64, passingScore *float64) (percentage float64, passed bool) {
	if totalPossible > 0 {
		percentage = score / totalPossible * 100
	}
	if passingScore == nil {
		return percentage, true
	}
	return percentage, percentage >= *passingScore
}
