package model

import (
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
	Code           QuestionType = "code"
)

// AutoGradable reports whether correctness can be decided by rule matching
// alone. short_answer is keyword-free here, so it goes to the manual queue.
func (t QuestionType) AutoGradable() bool {
	switch t {
	case MultipleChoice, TrueFalse:
		return true
	case ShortAnswer, Essay, Code:
		return false
	}
	return false
}

func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, TrueFalse, ShortAnswer, Essay, Code:
		return true
	}
	return false
}

// QuestionData is the closed set of per-type grading rules stored in
// Question.Data. Exactly one variant exists per question type.
type QuestionData interface {
	isQuestionData()
}

type ChoiceOption struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type MultipleChoiceData struct {
	Options []ChoiceOption `json:"options"`
}

func (MultipleChoiceData) isQuestionData() {}

// CorrectOptionID returns the id of the single option flagged correct.
func (d MultipleChoiceData) CorrectOptionID() (string, bool) {
	for _, o := range d.Options {
		if o.Correct {
			return o.ID, true
		}
	}
	return "", false
}

type TrueFalseData struct {
	CorrectAnswer bool `json:"correctAnswer"`
}

func (TrueFalseData) isQuestionData() {}

// SubjectiveData covers short_answer/essay/code: the stored payload only
// guides human graders, it never decides correctness.
type SubjectiveData struct {
	SampleAnswer string `json:"sampleAnswer,omitempty"`
	RubricID     *uint  `json:"rubricId,omitempty"`
	Language     string `json:"language,omitempty"` // code questions only
}

func (SubjectiveData) isQuestionData() {}

// DecodeQuestionData parses raw into the variant matching t.
func DecodeQuestionData(t QuestionType, raw json.RawMessage) (QuestionData, error) {
	switch t {
	case MultipleChoice:
		var d MultipleChoiceData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("multiple_choice data: %w", err)
		}
		return d, nil
	case TrueFalse:
		var d TrueFalseData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("true_false data: %w", err)
		}
		return d, nil
	case ShortAnswer, Essay, Code:
		var d SubjectiveData
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &d); err != nil {
				return nil, fmt.Errorf("%s data: %w", t, err)
			}
		}
		return d, nil
	}
	return nil, fmt.Errorf("unknown question type %q", t)
}

// AnswerData is the closed set of learner answer payloads.
type AnswerData interface {
	isAnswerData()
}

type ChoiceAnswer struct {
	OptionID string `json:"optionId"`
}

func (ChoiceAnswer) isAnswerData() {}

type BoolAnswer struct {
	Value bool `json:"value"`
}

func (BoolAnswer) isAnswerData() {}

type TextAnswer struct {
	Text          string `json:"text"`
	AttachmentURL string `json:"attachmentUrl,omitempty"`
}

func (TextAnswer) isAnswerData() {}

// DecodeAnswerData parses a learner answer for a question of type t.
func DecodeAnswerData(t QuestionType, raw json.RawMessage) (AnswerData, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty answer data")
	}
	switch t {
	case MultipleChoice:
		var a ChoiceAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("multiple_choice answer: %w", err)
		}
		if a.OptionID == "" {
			return nil, fmt.Errorf("multiple_choice answer: optionId required")
		}
		return a, nil
	case TrueFalse:
		var a BoolAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("true_false answer: %w", err)
		}
		return a, nil
	case ShortAnswer, Essay, Code:
		var a TextAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("%s answer: %w", t, err)
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown question type %q", t)
}
