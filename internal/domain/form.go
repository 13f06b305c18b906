package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Form groups the questions generated for one template version.
type Form struct {
	ID                uuid.UUID
	TemplateVersionID uuid.UUID
	Title             string
	CreatedAt         time.Time
	Questions         []Question
}

// Question is a fillable field derived from a placeholder.
// Label is the placeholder content; Variable is its normalized key.
type Question struct {
	ID       uuid.UUID
	FormID   uuid.UUID
	Label    string
	Variable string
	Type     FieldType
	Required bool
	Position int
	Choices  []string
}

// Answer is a validated value for one question.
type Answer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Value      string    `json:"value"`
}

// AllQuestions flattens the questions of several forms in form order.
func AllQuestions(forms []Form) []Question {
	var out []Question
	for _, f := range forms {
		out = append(out, f.Questions...)
	}
	return out
}

func sortStrings(s []string) { slices.Sort(s) }
