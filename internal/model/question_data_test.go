package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeQuestionData(t *testing.T) {
	tests := []struct {
		name    string
		qType   QuestionType
		raw     string
		want    QuestionData
		wantErr bool
	}{
		{
			name:  "multiple choice",
			qType: MultipleChoice,
			raw:   `{"options":[{"id":"a","text":"2","correct":false},{"id":"b","text":"4","correct":true}]}`,
			want: MultipleChoiceData{Options: []ChoiceOption{
				{ID: "a", Text: "2"},
				{ID: "b", Text: "4", Correct: true},
			}},
		},
		{
			name:  "true false",
			qType: TrueFalse,
			raw:   `{"correctAnswer":true}`,
			want:  TrueFalseData{CorrectAnswer: true},
		},
		{
			name:  "essay with rubric",
			qType: Essay,
			raw:   `{"sampleAnswer":"because","rubricId":3}`,
			want:  SubjectiveData{SampleAnswer: "because", RubricID: uintPtr(3)},
		},
		{
			name:  "code with language",
			qType: Code,
			raw:   `{"language":"c"}`,
			want:  SubjectiveData{Language: "c"},
		},
		{
			name:  "short answer allows empty payload",
			qType: ShortAnswer,
			raw:   "",
			want:  SubjectiveData{},
		},
		{
			name:    "malformed payload",
			qType:   MultipleChoice,
			raw:     `{"options":`,
			wantErr: true,
		},
		{
			name:    "unknown type",
			qType:   QuestionType("matching"),
			raw:     `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeQuestionData(tt.qType, json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeAnswerData(t *testing.T) {
	tests := []struct {
		name    string
		qType   QuestionType
		raw     string
		want    AnswerData
		wantErr bool
	}{
		{
			name:  "choice answer",
			qType: MultipleChoice,
			raw:   `{"optionId":"b"}`,
			want:  ChoiceAnswer{OptionID: "b"},
		},
		{
			name:    "choice answer missing option",
			qType:   MultipleChoice,
			raw:     `{}`,
			wantErr: true,
		},
		{
			name:  "bool answer",
			qType: TrueFalse,
			raw:   `{"value":false}`,
			want:  BoolAnswer{Value: false},
		},
		{
			name:  "text answer with attachment",
			qType: Essay,
			raw:   `{"text":"my essay","attachmentUrl":"/uploads/x.pdf"}`,
			want:  TextAnswer{Text: "my essay", AttachmentURL: "/uploads/x.pdf"},
		},
		{
			name:    "empty answer",
			qType:   TrueFalse,
			raw:     "",
			wantErr: true,
		},
		{
			name:    "unknown type",
			qType:   QuestionType("matching"),
			raw:     `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAnswerData(tt.qType, json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuestionTypeAutoGradable(t *testing.T) {
	assert.True(t, MultipleChoice.AutoGradable())
	assert.True(t, TrueFalse.AutoGradable())
	assert.False(t, ShortAnswer.AutoGradable())
	assert.False(t, Essay.AutoGradable())
	assert.False(t, Code.AutoGradable())
	assert.False(t, QuestionType("matching").AutoGradable())
}

func TestCorrectOptionID(t *testing.T) {
	d := MultipleChoiceData{Options: []ChoiceOption{
		{ID: "a"}, {ID: "b", Correct: true}, {ID: "c"},
	}}
	id, ok := d.CorrectOptionID()
	assert.True(t, ok)
	assert.Equal(t, "b", id)

	none := MultipleChoiceData{Options: []ChoiceOption{{ID: "a"}}}
	_, ok = none.CorrectOptionID()
	assert.False(t, ok)
}

func uintPtr(v uint) *uint { return &v }
