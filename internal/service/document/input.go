package document

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

const MaxAnswers = 500

// AnswerInput is one submitted answer. A nil QuestionID or Value marks an
// incomplete entry.
type AnswerInput struct {
	QuestionID *uuid.UUID
	Value      any
}

// GenerateInput holds the parameters for generating a document.
//
// When Answers is non-nil the submission is validated against the forms of
// the version; otherwise Data is validated against its input schema.
type GenerateInput struct {
	TemplateVersionID uuid.UUID
	Data              map[string]any
	Answers           []AnswerInput
	Format            string
}

// UsesAnswers reports whether the submission is a form answer set.
func (i GenerateInput) UsesAnswers() bool { return i.Answers != nil }

// Validate checks the request shape and returns the parsed output format.
// Answer completeness is checked later against the stored forms.
func (i GenerateInput) Validate() (domain.OutputFormat, error) {
	var errs []domain.FieldError

	if i.TemplateVersionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "template_version_id", Message: "required"})
	}
	format, ok := domain.ParseOutputFormat(i.Format)
	if !ok {
		errs = append(errs, domain.FieldError{Field: "format", Message: "must be DOCX or PDF"})
	}
	if len(i.Answers) > MaxAnswers {
		errs = append(errs, domain.FieldError{Field: "answers", Message: fmt.Sprintf("max %d answers", MaxAnswers)})
	}

	if len(errs) > 0 {
		return "", &domain.ValidationError{Errors: errs}
	}
	return format, nil
}

// ListInput holds the parameters for listing the caller's documents.
type ListInput struct {
	Status     *domain.DocumentStatus
	TemplateID *uuid.UUID
	Limit      int
	Offset     int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError

	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be >= 0"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
