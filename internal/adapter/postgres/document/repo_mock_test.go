package document_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/GraceHermine/GenerateurDocument/internal/adapter/postgres/document"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

func newMockRepo(t *testing.T) (*document.Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return document.New(mock), mock
}

func TestRepo_Claim_MissingDocument(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`UPDATE documents SET status = \$1, attempt = attempt \+ 1`).
		WithArgs("PROCESSING", pgxmock.AnyArg(), pgxmock.AnyArg(), "PENDING").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM documents WHERE id = \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Claim(context.Background(), id, time.Now())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_Delete_NoRows(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM documents WHERE id = \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_FailStale_QueryError(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE documents SET status = \$1`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FailStale(context.Background(), time.Now(), "stale", time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
