// Package template implements the Template and TemplateVersion repository
// using PostgreSQL.
package template

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

var (
	templateColumns = []string{"id", "title", "description", "category", "created_by", "created_at", "updated_at"}
	versionColumns  = []string{
		"id", "template_id", "version_number", "source_key", "source_filename",
		"input_schema", "is_active", "change_log", "created_at",
	}
)

// Repo provides template persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new template repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a template and returns the persisted row.
func (r *Repo) Create(ctx context.Context, t domain.Template) (domain.Template, error) {
	query, args, err := postgres.Builder().
		Insert("templates").
		Columns(templateColumns...).
		Values(t.ID, t.Title, t.Description, t.Category, t.CreatedBy, t.CreatedAt, t.UpdatedAt).
		Suffix("RETURNING " + strings.Join(templateColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Template{}, fmt.Errorf("build insert template: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...)
	out, err := scanTemplate(row)
	if err != nil {
		return domain.Template{}, postgres.MapError(err, "template", t.ID)
	}
	return out, nil
}

// Touch bumps updated_at of a template.
func (r *Repo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	query, args, err := postgres.Builder().
		Update("templates").
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build touch template: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "template", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CreateVersion inserts a template version.
func (r *Repo) CreateVersion(ctx context.Context, v domain.TemplateVersion) (domain.TemplateVersion, error) {
	schema, err := marshalSchema(v.InputSchema)
	if err != nil {
		return domain.TemplateVersion{}, err
	}

	query, args, err := postgres.Builder().
		Insert("template_versions").
		Columns(versionColumns...).
		Values(v.ID, v.TemplateID, v.VersionNumber, v.SourceKey, v.SourceFilename,
			schema, v.IsActive, v.ChangeLog, v.CreatedAt).
		Suffix("RETURNING " + strings.Join(versionColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.TemplateVersion{}, fmt.Errorf("build insert template_version: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...)
	out, err := scanVersion(row)
	if err != nil {
		return domain.TemplateVersion{}, postgres.MapError(err, "template_version", v.ID)
	}
	return out, nil
}

// DeactivateVersions clears the active flag of every version of a template.
func (r *Repo) DeactivateVersions(ctx context.Context, templateID uuid.UUID) error {
	query, args, err := postgres.Builder().
		Update("template_versions").
		Set("is_active", false).
		Where(squirrel.Eq{"template_id": templateID, "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deactivate versions: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "template", templateID)
	}
	return nil
}

// SetActive flags one version as active. Callers deactivate the siblings
// first in the same transaction; the partial unique index rejects a second
// active version otherwise.
func (r *Repo) SetActive(ctx context.Context, templateID uuid.UUID, versionNumber int) (domain.TemplateVersion, error) {
	query, args, err := postgres.Builder().
		Update("template_versions").
		Set("is_active", true).
		Where(squirrel.Eq{"template_id": templateID, "version_number": versionNumber}).
		Suffix("RETURNING " + strings.Join(versionColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.TemplateVersion{}, fmt.Errorf("build activate version: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...)
	out, err := scanVersion(row)
	if err != nil {
		return domain.TemplateVersion{}, postgres.MapError(err, "template_version", templateID)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a template without its versions.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Template, error) {
	query, args, err := postgres.Builder().
		Select(templateColumns...).
		From("templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Template{}, fmt.Errorf("build get template: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...)
	out, err := scanTemplate(row)
	if err != nil {
		return domain.Template{}, postgres.MapError(err, "template", id)
	}
	return out, nil
}

// LockForUpdate locks a template row until the end of the transaction.
// It serializes version creation for one template.
func (r *Repo) LockForUpdate(ctx context.Context, id uuid.UUID) error {
	query, args, err := postgres.Builder().
		Select("id").
		From("templates").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock template: %w", err)
	}

	var got uuid.UUID
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&got); err != nil {
		return postgres.MapError(err, "template", id)
	}
	return nil
}

// List returns templates matching filter, newest first, with the total count.
func (r *Repo) List(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, int, error) {
	where := squirrel.And{}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		pattern := "%" + escapeLike(strings.TrimSpace(*filter.Search)) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	if filter.Category != nil && *filter.Category != "" {
		where = append(where, squirrel.Eq{"category": *filter.Category})
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	countQuery, countArgs, err := postgres.Builder().
		Select("count(*)").
		From("templates").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count templates: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count templates: %w", err)
	}

	query, args, err := postgres.Builder().
		Select(templateColumns...).
		From("templates").
		Where(where).
		OrderBy("created_at DESC", "id").
		Limit(uint64(domain.ClampLimit(filter.Limit))).
		Offset(uint64(max(filter.Offset, 0))).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list templates: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}
	return out, total, nil
}

// GetVersion returns a template version by id.
func (r *Repo) GetVersion(ctx context.Context, id uuid.UUID) (domain.TemplateVersion, error) {
	return r.getVersion(ctx, squirrel.Eq{"id": id}, id)
}

// ActiveVersion returns the active version of a template.
func (r *Repo) ActiveVersion(ctx context.Context, templateID uuid.UUID) (domain.TemplateVersion, error) {
	return r.getVersion(ctx, squirrel.Eq{"template_id": templateID, "is_active": true}, templateID)
}

// GetVersionByNumber returns a version of a template by its number.
func (r *Repo) GetVersionByNumber(ctx context.Context, templateID uuid.UUID, number int) (domain.TemplateVersion, error) {
	return r.getVersion(ctx, squirrel.Eq{"template_id": templateID, "version_number": number}, templateID)
}

func (r *Repo) getVersion(ctx context.Context, where squirrel.Eq, id uuid.UUID) (domain.TemplateVersion, error) {
	query, args, err := postgres.Builder().
		Select(versionColumns...).
		From("template_versions").
		Where(where).
		ToSql()
	if err != nil {
		return domain.TemplateVersion{}, fmt.Errorf("build get template_version: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...)
	out, err := scanVersion(row)
	if err != nil {
		return domain.TemplateVersion{}, postgres.MapError(err, "template_version", id)
	}
	return out, nil
}

// ListVersions returns the versions of a template, newest first.
func (r *Repo) ListVersions(ctx context.Context, templateID uuid.UUID) ([]domain.TemplateVersion, error) {
	query, args, err := postgres.Builder().
		Select(versionColumns...).
		From("template_versions").
		Where(squirrel.Eq{"template_id": templateID}).
		OrderBy("version_number DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list versions: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list template_versions: %w", err)
	}
	defer rows.Close()

	var out []domain.TemplateVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template_version: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list template_versions: %w", err)
	}
	return out, nil
}

// MaxVersionNumber returns the highest version number of a template, 0 if
// it has none.
func (r *Repo) MaxVersionNumber(ctx context.Context, templateID uuid.UUID) (int, error) {
	query, args, err := postgres.Builder().
		Select("COALESCE(max(version_number), 0)").
		From("template_versions").
		Where(squirrel.Eq{"template_id": templateID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build max version: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "template", templateID)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanTemplate(row pgx.Row) (domain.Template, error) {
	var t domain.Template
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanVersion(row pgx.Row) (domain.TemplateVersion, error) {
	var (
		v      domain.TemplateVersion
		schema []byte
	)
	err := row.Scan(&v.ID, &v.TemplateID, &v.VersionNumber, &v.SourceKey, &v.SourceFilename,
		&schema, &v.IsActive, &v.ChangeLog, &v.CreatedAt)
	if err != nil {
		return domain.TemplateVersion{}, err
	}
	if len(schema) > 0 {
		if err := json.Unmarshal(schema, &v.InputSchema); err != nil {
			return domain.TemplateVersion{}, fmt.Errorf("template_version %s unmarshal input_schema: %w", v.ID, err)
		}
	}
	if v.InputSchema == nil {
		v.InputSchema = domain.InputSchema{}
	}
	return v, nil
}

func marshalSchema(s domain.InputSchema) ([]byte, error) {
	if s == nil {
		s = domain.InputSchema{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal input_schema: %w", err)
	}
	return b, nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
