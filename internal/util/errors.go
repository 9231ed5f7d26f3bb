package util

import (
	"errors"
	"fmt"
)

var (
	ErrAssessmentNotFound     = errors.New("assessment not found")
	ErrQuestionNotFound       = errors.New("question not found")
	ErrAttemptNotFound        = errors.New("attempt not found")
	ErrRubricNotFound         = errors.New("rubric not found")
	ErrAssessmentNotPublished = errors.New("assessment not published")
	ErrAttemptLimitExceeded   = errors.New("attempt limit exceeded")
	ErrAttemptNotEditable     = errors.New("attempt is not editable")
	ErrNotAttemptOwner        = errors.New("attempt belongs to another user")
	ErrValidation             = errors.New("validation failed")
)

// Validationf wraps a formatted message so callers can match ErrValidation
// with errors.Is while keeping the field-level detail.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
