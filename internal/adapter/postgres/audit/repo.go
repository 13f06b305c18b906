// Package audit implements the document audit log repository using
// PostgreSQL. It provides append-only operations; entries are never updated
// and outlive the document they describe.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

var columns = []string{"id", "document_id", "actor_id", "action", "ip", "details", "created_at"}

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Append inserts a new audit entry and returns the persisted row.
func (r *Repo) Append(ctx context.Context, e domain.AuditEntry) (domain.AuditEntry, error) {
	var details []byte
	if e.Details != nil {
		var err error
		details, err = json.Marshal(e.Details)
		if err != nil {
			return domain.AuditEntry{}, fmt.Errorf("audit_entry marshal details: %w", err)
		}
	}

	query, args, err := postgres.Builder().
		Insert("document_audit_log").
		Columns(columns...).
		Values(e.ID, e.DocumentID, e.ActorID, string(e.Action), e.IP, details, e.CreatedAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("build insert audit_entry: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...)
	out, err := scanEntry(row)
	if err != nil {
		return domain.AuditEntry{}, postgres.MapError(err, "audit_entry", e.ID)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListByDocument returns the history of a document in chronological order.
func (r *Repo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.AuditEntry, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From("document_audit_log").
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit_entries: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit_entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuditEntry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit_entries: %w", err)
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanEntry(row pgx.Row) (domain.AuditEntry, error) {
	var (
		e       domain.AuditEntry
		action  string
		details []byte
	)
	if err := row.Scan(&e.ID, &e.DocumentID, &e.ActorID, &action, &e.IP, &details, &e.CreatedAt); err != nil {
		return domain.AuditEntry{}, err
	}
	e.Action = domain.AuditAction(action)
	if len(details) > 0 {
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return domain.AuditEntry{}, fmt.Errorf("audit_entry %s unmarshal details: %w", e.ID, err)
		}
	}
	return e, nil
}
