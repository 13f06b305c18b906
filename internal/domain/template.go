package domain

import (
	"time"

	"github.com/google/uuid"
)

// Template is a logical document definition. Its content lives in
// immutable versions; the active version is the one used by default.
type Template struct {
	ID          uuid.UUID
	Title       string
	Description string
	Category    string
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated by detail queries only.
	Versions []TemplateVersion
}

// CurrentVersion returns the active version among the loaded versions.
func (t *Template) CurrentVersion() (*TemplateVersion, bool) {
	for i := range t.Versions {
		if t.Versions[i].IsActive {
			return &t.Versions[i], true
		}
	}
	return nil, false
}

// TemplateVersion is a snapshot of a template's source file and input schema.
// Versions are never edited after creation; only the active flag moves.
type TemplateVersion struct {
	ID             uuid.UUID
	TemplateID     uuid.UUID
	VersionNumber  int
	SourceKey      string
	SourceFilename string
	InputSchema    InputSchema
	IsActive       bool
	ChangeLog      string
	CreatedAt      time.Time
}

// SchemaField describes one expected input of a template version.
type SchemaField struct {
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Label    string    `json:"label,omitempty"`
}

// InputSchema maps a field key to its definition.
type InputSchema map[string]SchemaField

// RequiredKeys returns the keys flagged as required, sorted for stable output.
func (s InputSchema) RequiredKeys() []string {
	keys := make([]string, 0, len(s))
	for k, f := range s {
		if f.Required {
			keys = append(keys, k)
		}
	}
	sortStrings(keys)
	return keys
}

// SchemaFromQuestions derives an input schema from a question set.
func SchemaFromQuestions(questions []Question) InputSchema {
	schema := make(InputSchema, len(questions))
	for _, q := range questions {
		schema[q.Variable] = SchemaField{
			Type:     q.Type,
			Required: q.Required,
			Label:    q.Label,
		}
	}
	return schema
}
