// Package form implements the Form and Question repository using PostgreSQL.
package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

var (
	formColumns     = []string{"id", "template_version_id", "title", "created_at"}
	questionColumns = []string{"id", "form_id", "label", "variable", "field_type", "required", "position", "choices"}
)

// Repo provides form persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new form repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a form together with its questions. Callers run it inside
// a transaction so that a form never exists without its questions.
func (r *Repo) Create(ctx context.Context, f domain.Form) (domain.Form, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	query, args, err := postgres.Builder().
		Insert("forms").
		Columns(formColumns...).
		Values(f.ID, f.TemplateVersionID, f.Title, f.CreatedAt).
		ToSql()
	if err != nil {
		return domain.Form{}, fmt.Errorf("build insert form: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return domain.Form{}, postgres.MapError(err, "form", f.ID)
	}

	if len(f.Questions) == 0 {
		return f, nil
	}

	insert := postgres.Builder().Insert("questions").Columns(questionColumns...)
	for _, qu := range f.Questions {
		insert = insert.Values(qu.ID, f.ID, qu.Label, qu.Variable, string(qu.Type), qu.Required, qu.Position, choicesOrEmpty(qu.Choices))
	}
	query, args, err = insert.ToSql()
	if err != nil {
		return domain.Form{}, fmt.Errorf("build insert questions: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return domain.Form{}, postgres.MapError(err, "form", f.ID)
	}

	for i := range f.Questions {
		f.Questions[i].FormID = f.ID
	}
	return f, nil
}

// UpdateQuestion saves the editable fields of a question.
func (r *Repo) UpdateQuestion(ctx context.Context, qu domain.Question) (domain.Question, error) {
	query, args, err := postgres.Builder().
		Update("questions").
		Set("label", qu.Label).
		Set("field_type", string(qu.Type)).
		Set("required", qu.Required).
		Set("choices", choicesOrEmpty(qu.Choices)).
		Where(squirrel.Eq{"id": qu.ID}).
		Suffix("RETURNING " + strings.Join(questionColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Question{}, fmt.Errorf("build update question: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...)
	out, err := scanQuestion(row)
	if err != nil {
		return domain.Question{}, postgres.MapError(err, "question", qu.ID)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetQuestion returns a question by id.
func (r *Repo) GetQuestion(ctx context.Context, id uuid.UUID) (domain.Question, error) {
	query, args, err := postgres.Builder().
		Select(questionColumns...).
		From("questions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Question{}, fmt.Errorf("build get question: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...)
	out, err := scanQuestion(row)
	if err != nil {
		return domain.Question{}, postgres.MapError(err, "question", id)
	}
	return out, nil
}

// ListByVersion returns the forms of a template version with their
// questions ordered by position.
func (r *Repo) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	query, args, err := postgres.Builder().
		Select(formColumns...).
		From("forms").
		Where(squirrel.Eq{"template_version_id": versionID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list forms: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	forms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Form, error) {
		var f domain.Form
		err := row.Scan(&f.ID, &f.TemplateVersionID, &f.Title, &f.CreatedAt)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan forms: %w", err)
	}
	if len(forms) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(forms))
	index := make(map[uuid.UUID]int, len(forms))
	for i, f := range forms {
		ids[i] = f.ID
		index[f.ID] = i
	}

	query, args, err = postgres.Builder().
		Select(questionColumns...).
		From("questions").
		Where(squirrel.Eq{"form_id": ids}).
		OrderBy("position", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list questions: %w", err)
	}

	rows, err = q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	questions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Question, error) {
		return scanQuestion(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan questions: %w", err)
	}

	for _, qu := range questions {
		i := index[qu.FormID]
		forms[i].Questions = append(forms[i].Questions, qu)
	}
	return forms, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		qu        domain.Question
		fieldType string
	)
	err := row.Scan(&qu.ID, &qu.FormID, &qu.Label, &qu.Variable, &fieldType, &qu.Required, &qu.Position, &qu.Choices)
	if err != nil {
		return domain.Question{}, err
	}
	qu.Type = domain.FieldType(fieldType)
	return qu, nil
}

func choicesOrEmpty(c []string) []string {
	if c == nil {
		return []string{}
	}
	return c
}
