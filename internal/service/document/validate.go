package document

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/render/substitute"
)

// ValidateAnswers checks an answer set against every form of a version and
// returns the normalized answers. The checks run in order and the first
// failing stage decides the error:
//
//  1. the answer set is not empty;
//  2. every entry has a question reference and a value;
//  3. every required question is answered.
func ValidateAnswers(forms []domain.Form, answers []AnswerInput) ([]domain.Answer, error) {
	if len(answers) == 0 {
		return nil, domain.NewValidationError("answers", "at least one answer required")
	}

	var errs []domain.FieldError
	out := make([]domain.Answer, 0, len(answers))
	for i, a := range answers {
		if a.QuestionID == nil || a.Value == nil {
			errs = append(errs, domain.FieldError{
				Field:   fmt.Sprintf("answers[%d]", i),
				Message: "entry must contain question and value",
			})
			continue
		}
		out = append(out, domain.Answer{QuestionID: *a.QuestionID, Value: substitute.Stringify(a.Value)})
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	answered := make(map[uuid.UUID]bool, len(out))
	for _, a := range out {
		answered[a.QuestionID] = true
	}
	for _, q := range domain.AllQuestions(forms) {
		if q.Required && !answered[q.ID] {
			errs = append(errs, domain.FieldError{
				Field:   "answers." + q.Variable,
				Message: fmt.Sprintf("%q is required", q.Label),
			})
		}
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}
	return out, nil
}

// ValidateData checks that every required key of the schema has a value.
// Blank strings count as missing.
func ValidateData(schema domain.InputSchema, data map[string]any) error {
	var errs []domain.FieldError
	for _, key := range schema.RequiredKeys() {
		v, ok := data[key]
		if ok && v != nil {
			if s, isString := v.(string); !isString || strings.TrimSpace(s) != "" {
				continue
			}
		}
		label := schema[key].Label
		if label == "" {
			label = key
		}
		errs = append(errs, domain.FieldError{
			Field:   "data." + key,
			Message: fmt.Sprintf("%q is required", label),
		})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
