// Package document implements the Document (generation job) repository
// using PostgreSQL. Status changes are conditional updates on the current
// status and attempt, so concurrent workers cannot both move a document.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

const entity = "document"

var columns = []string{
	"id", "template_version_id", "owner_id", "format", "input_data", "answers",
	"status", "attempt", "output_key", "filename", "content_type", "size_bytes",
	"error_log", "created_at", "updated_at", "completed_at",
}

var returning = "RETURNING " + strings.Join(columns, ", ")

// Repo provides document persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new document repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a document in its initial status.
func (r *Repo) Create(ctx context.Context, d domain.Document) (domain.Document, error) {
	inputData, answers, err := marshalInputs(d)
	if err != nil {
		return domain.Document{}, err
	}

	query, args, err := postgres.Builder().
		Insert("documents").
		Columns(columns...).
		Values(d.ID, d.TemplateVersionID, d.OwnerID, string(d.Format), inputData, answers,
			string(d.Status), d.Attempt, d.OutputKey, d.Filename, d.ContentType, d.SizeBytes,
			d.ErrorLog, d.CreatedAt, d.UpdatedAt, d.CompletedAt).
		Suffix(returning).
		ToSql()
	if err != nil {
		return domain.Document{}, fmt.Errorf("build insert document: %w", err)
	}

	return r.queryOne(ctx, query, args, d.ID)
}

// Claim moves a PENDING document to PROCESSING and increments its attempt.
// It returns domain.ErrConflict when the document is not PENDING.
func (r *Repo) Claim(ctx context.Context, id uuid.UUID, at time.Time) (domain.Document, error) {
	query, args, err := postgres.Builder().
		Update("documents").
		Set("status", string(domain.DocumentStatusProcessing)).
		Set("attempt", squirrel.Expr("attempt + 1")).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": string(domain.DocumentStatusPending)}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return domain.Document{}, fmt.Errorf("build claim document: %w", err)
	}

	d, err := r.queryOne(ctx, query, args, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Document{}, r.conflictOrNotFound(ctx, id)
	}
	return d, err
}

// LockAttempt locks a PROCESSING document row for the given attempt until
// the end of the transaction. Another attempt or a status change yields
// domain.ErrConflict.
func (r *Repo) LockAttempt(ctx context.Context, id uuid.UUID, attempt int) error {
	query, args, err := postgres.Builder().
		Select("id").
		From("documents").
		Where(squirrel.Eq{"id": id, "status": string(domain.DocumentStatusProcessing), "attempt": attempt}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock document: %w", err)
	}

	var got uuid.UUID
	err = postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.conflictOrNotFound(ctx, id)
	}
	if err != nil {
		return postgres.MapError(err, entity, id)
	}
	return nil
}

// Complete records the artifact of a PROCESSING attempt and moves the
// document to COMPLETED. Output fields and completed_at are written by the
// same statement.
func (r *Repo) Complete(ctx context.Context, id uuid.UUID, attempt int, a domain.Artifact, at time.Time) (domain.Document, error) {
	query, args, err := postgres.Builder().
		Update("documents").
		Set("status", string(domain.DocumentStatusCompleted)).
		Set("output_key", a.Key).
		Set("filename", a.Filename).
		Set("content_type", a.ContentType).
		Set("size_bytes", a.Size).
		Set("error_log", nil).
		Set("completed_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": string(domain.DocumentStatusProcessing), "attempt": attempt}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return domain.Document{}, fmt.Errorf("build complete document: %w", err)
	}

	d, err := r.queryOne(ctx, query, args, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Document{}, r.conflictOrNotFound(ctx, id)
	}
	return d, err
}

// Fail moves a PENDING or PROCESSING attempt to FAILED with a cause and
// clears any output reference.
func (r *Repo) Fail(ctx context.Context, id uuid.UUID, attempt int, cause string, at time.Time) (domain.Document, error) {
	if strings.TrimSpace(cause) == "" {
		cause = "generation failed"
	}

	query, args, err := postgres.Builder().
		Update("documents").
		Set("status", string(domain.DocumentStatusFailed)).
		Set("error_log", cause).
		Set("output_key", nil).
		Set("filename", nil).
		Set("content_type", nil).
		Set("size_bytes", 0).
		Set("completed_at", nil).
		Set("updated_at", at).
		Where(squirrel.Eq{
			"id":      id,
			"attempt": attempt,
			"status":  []string{string(domain.DocumentStatusPending), string(domain.DocumentStatusProcessing)},
		}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return domain.Document{}, fmt.Errorf("build fail document: %w", err)
	}

	d, err := r.queryOne(ctx, query, args, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Document{}, r.conflictOrNotFound(ctx, id)
	}
	return d, err
}

// ResetForRetry moves a FAILED document back to PENDING and clears its
// error. Any other status yields a *domain.TransitionError.
func (r *Repo) ResetForRetry(ctx context.Context, id uuid.UUID, at time.Time) (domain.Document, error) {
	query, args, err := postgres.Builder().
		Update("documents").
		Set("status", string(domain.DocumentStatusPending)).
		Set("error_log", nil).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": string(domain.DocumentStatusFailed)}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return domain.Document{}, fmt.Errorf("build retry document: %w", err)
	}

	d, err := r.queryOne(ctx, query, args, id)
	if !errors.Is(err, domain.ErrNotFound) {
		return d, err
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return domain.Document{}, getErr
	}
	return domain.Document{}, fmt.Errorf("%s %s: %w", entity, id,
		&domain.TransitionError{From: current.Status, To: domain.DocumentStatusPending})
}

// FailStale fails PROCESSING documents whose last update is older than
// before. They belong to workers that stopped mid-attempt.
func (r *Repo) FailStale(ctx context.Context, before time.Time, cause string, at time.Time) ([]uuid.UUID, error) {
	return r.failStale(ctx, domain.DocumentStatusProcessing, before, cause, at)
}

// FailStalePending fails PENDING documents whose last update is older than
// before. Without a worker pool nothing else would pick them up again.
func (r *Repo) FailStalePending(ctx context.Context, before time.Time, cause string, at time.Time) ([]uuid.UUID, error) {
	return r.failStale(ctx, domain.DocumentStatusPending, before, cause, at)
}

func (r *Repo) failStale(ctx context.Context, status domain.DocumentStatus, before time.Time, cause string, at time.Time) ([]uuid.UUID, error) {
	query, args, err := postgres.Builder().
		Update("documents").
		Set("status", string(domain.DocumentStatusFailed)).
		Set("error_log", cause).
		Set("output_key", nil).
		Set("completed_at", nil).
		Set("updated_at", at).
		Where(squirrel.Eq{"status": string(status)}).
		Where(squirrel.Lt{"updated_at": before}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build fail stale %s documents: %w", status, err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fail stale %s documents: %w", status, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("fail stale %s documents: %w", status, err)
	}
	return ids, nil
}

// Delete removes a document row.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := postgres.Builder().
		Delete("documents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete document: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, entity, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a document by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From("documents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Document{}, fmt.Errorf("build get document: %w", err)
	}
	return r.queryOne(ctx, query, args, id)
}

// List returns documents matching filter, newest first, with the total count.
func (r *Repo) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	where := squirrel.And{}
	if filter.OwnerID != nil {
		where = append(where, squirrel.Eq{"d.owner_id": *filter.OwnerID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"d.status": string(*filter.Status)})
	}
	if filter.TemplateID != nil {
		where = append(where, squirrel.Eq{"v.template_id": *filter.TemplateID})
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	countQuery, countArgs, err := postgres.Builder().
		Select("count(*)").
		From("documents d").
		Join("template_versions v ON v.id = d.template_version_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count documents: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	qualified := make([]string, len(columns))
	for i, c := range columns {
		qualified[i] = "d." + c
	}
	query, args, err := postgres.Builder().
		Select(qualified...).
		From("documents d").
		Join("template_versions v ON v.id = d.template_version_id").
		Where(where).
		OrderBy("d.created_at DESC", "d.id").
		Limit(uint64(domain.ClampLimit(filter.Limit))).
		Offset(uint64(max(filter.Offset, 0))).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list documents: %w", err)
	}

	docs, err := r.queryMany(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// ListPendingBefore returns ids of PENDING documents last updated before
// the given time, oldest first.
func (r *Repo) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	query, args, err := postgres.Builder().
		Select("id").
		From("documents").
		Where(squirrel.Eq{"status": string(domain.DocumentStatusPending)}).
		Where(squirrel.Lt{"updated_at": before}).
		OrderBy("updated_at").
		Limit(uint64(max(limit, 1))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list pending documents: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending documents: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("list pending documents: %w", err)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// conflictOrNotFound distinguishes a failed conditional update on an
// existing row from a missing row.
func (r *Repo) conflictOrNotFound(ctx context.Context, id uuid.UUID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%s %s is %s: %w", entity, id, current.Status, domain.ErrConflict)
}

func (r *Repo) queryOne(ctx context.Context, query string, args []any, id uuid.UUID) (domain.Document, error) {
	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...)
	d, err := scanDocument(row)
	if err != nil {
		return domain.Document{}, postgres.MapError(err, entity, id)
	}
	return d, nil
}

func (r *Repo) queryMany(ctx context.Context, query string, args []any) ([]domain.Document, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Document, error) {
		return scanDocument(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	return docs, nil
}

func scanDocument(row pgx.Row) (domain.Document, error) {
	var (
		d                 domain.Document
		format, status    string
		inputData, answer []byte
	)
	err := row.Scan(&d.ID, &d.TemplateVersionID, &d.OwnerID, &format, &inputData, &answer,
		&status, &d.Attempt, &d.OutputKey, &d.Filename, &d.ContentType, &d.SizeBytes,
		&d.ErrorLog, &d.CreatedAt, &d.UpdatedAt, &d.CompletedAt)
	if err != nil {
		return domain.Document{}, err
	}
	d.Format = domain.OutputFormat(format)
	d.Status = domain.DocumentStatus(status)

	if len(inputData) > 0 {
		dec := json.NewDecoder(bytes.NewReader(inputData))
		dec.UseNumber()
		if err := dec.Decode(&d.InputData); err != nil {
			return domain.Document{}, fmt.Errorf("document %s unmarshal input_data: %w", d.ID, err)
		}
	}
	if len(answer) > 0 {
		if err := json.Unmarshal(answer, &d.Answers); err != nil {
			return domain.Document{}, fmt.Errorf("document %s unmarshal answers: %w", d.ID, err)
		}
	}
	return d, nil
}

func marshalInputs(d domain.Document) ([]byte, []byte, error) {
	data := d.InputData
	if data == nil {
		data = map[string]any{}
	}
	inputData, err := json.Marshal(data)
	if err != nil {
		return nil, nil, fmt.Errorf("document %s marshal input_data: %w", d.ID, err)
	}
	ans := d.Answers
	if ans == nil {
		ans = []domain.Answer{}
	}
	answers, err := json.Marshal(ans)
	if err != nil {
		return nil, nil, fmt.Errorf("document %s marshal answers: %w", d.ID, err)
	}
	return inputData, answers, nil
}
