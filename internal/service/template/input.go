package template

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

const (
	MaxSourceSize   = 20 << 20
	MaxTitleLength  = 200
	MaxChangeLogLen = 2000
)

// CreateTemplateInput holds the parameters for creating a template and its
// first version.
type CreateTemplateInput struct {
	Title          string
	Description    string
	Category       string
	SourceFilename string
	Source         []byte
	InputSchema    domain.InputSchema
	ChangeLog      string
}

// Validate checks all fields and collects all errors.
func (i CreateTemplateInput) Validate() error {
	var errs []domain.FieldError

	title := strings.TrimSpace(i.Title)
	if title == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if len(title) > MaxTitleLength {
		errs = append(errs, domain.FieldError{Field: "title", Message: fmt.Sprintf("max %d characters", MaxTitleLength)})
	}
	errs = append(errs, validateSource(i.SourceFilename, i.Source)...)
	errs = append(errs, validateSchema(i.InputSchema)...)
	if len(i.ChangeLog) > MaxChangeLogLen {
		errs = append(errs, domain.FieldError{Field: "change_log", Message: fmt.Sprintf("max %d characters", MaxChangeLogLen)})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// CreateVersionInput holds the parameters for adding a version to a template.
type CreateVersionInput struct {
	TemplateID     uuid.UUID
	SourceFilename string
	Source         []byte
	InputSchema    domain.InputSchema
	ChangeLog      string
	Activate       bool
}

// Validate checks all fields and collects all errors.
func (i CreateVersionInput) Validate() error {
	var errs []domain.FieldError

	if i.TemplateID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "template_id", Message: "required"})
	}
	errs = append(errs, validateSource(i.SourceFilename, i.Source)...)
	errs = append(errs, validateSchema(i.InputSchema)...)
	if len(i.ChangeLog) > MaxChangeLogLen {
		errs = append(errs, domain.FieldError{Field: "change_log", Message: fmt.Sprintf("max %d characters", MaxChangeLogLen)})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListTemplatesInput holds the parameters for listing templates.
type ListTemplatesInput struct {
	Search   *string
	Category *string
	Limit    int
	Offset   int
}

// Validate checks all fields and collects all errors.
func (i ListTemplatesInput) Validate() error {
	var errs []domain.FieldError
	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Limit > domain.MaxPageSize {
		errs = append(errs, domain.FieldError{Field: "limit", Message: fmt.Sprintf("max %d", domain.MaxPageSize)})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateQuestionInput edits the suggestion attached to a question. The
// variable key is fixed once derived from the placeholder.
type UpdateQuestionInput struct {
	QuestionID uuid.UUID
	Label      *string
	Type       *domain.FieldType
	Required   *bool
	Choices    []string
}

// Validate checks all fields and collects all errors.
func (i UpdateQuestionInput) Validate() error {
	var errs []domain.FieldError

	if i.QuestionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "question_id", Message: "required"})
	}
	if i.Label != nil && strings.TrimSpace(*i.Label) == "" {
		errs = append(errs, domain.FieldError{Field: "label", Message: "must not be empty"})
	}
	if i.Type != nil && !i.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: "must be one of text, date, number, email, select"})
	}
	for n, c := range i.Choices {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, domain.FieldError{Field: fmt.Sprintf("choices[%d]", n), Message: "must not be empty"})
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateSource(filename string, source []byte) []domain.FieldError {
	var errs []domain.FieldError
	if len(source) == 0 {
		errs = append(errs, domain.FieldError{Field: "source", Message: "required"})
	}
	if len(source) > MaxSourceSize {
		errs = append(errs, domain.FieldError{Field: "source", Message: fmt.Sprintf("max %d bytes", MaxSourceSize)})
	}
	if filename != "" && !strings.EqualFold(filepath.Ext(filename), ".docx") {
		errs = append(errs, domain.FieldError{Field: "source_filename", Message: "must be a .docx file"})
	}
	return errs
}

func validateSchema(schema domain.InputSchema) []domain.FieldError {
	var errs []domain.FieldError
	for _, key := range slices.Sorted(maps.Keys(schema)) {
		f := schema[key]
		if strings.TrimSpace(key) == "" {
			errs = append(errs, domain.FieldError{Field: "input_schema", Message: "keys must not be empty"})
			continue
		}
		if f.Type != "" && !f.Type.IsValid() {
			errs = append(errs, domain.FieldError{Field: "input_schema." + key, Message: "unknown type " + string(f.Type)})
		}
	}
	return errs
}
