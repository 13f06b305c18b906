// Package document runs document generation jobs: it validates submitted
// answers, drives the job state machine, records audit entries and serves
// the generated artifacts.
package document

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/config"
	"github.com/GraceHermine/GenerateurDocument/internal/docx"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/render/convert"
)

// documentRepo defines the document repository interface needed by the service.
type documentRepo interface {
	Create(ctx context.Context, d domain.Document) (domain.Document, error)
	Claim(ctx context.Context, id uuid.UUID, at time.Time) (domain.Document, error)
	LockAttempt(ctx context.Context, id uuid.UUID, attempt int) error
	Complete(ctx context.Context, id uuid.UUID, attempt int, a domain.Artifact, at time.Time) (domain.Document, error)
	Fail(ctx context.Context, id uuid.UUID, attempt int, cause string, at time.Time) (domain.Document, error)
	ResetForRetry(ctx context.Context, id uuid.UUID, at time.Time) (domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Document, error)
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error)
}

// auditRepo defines the append-only audit log interface needed by the service.
type auditRepo interface {
	Append(ctx context.Context, e domain.AuditEntry) (domain.AuditEntry, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.AuditEntry, error)
}

// templateRepo reads template versions and their templates.
type templateRepo interface {
	GetVersion(ctx context.Context, id uuid.UUID) (domain.TemplateVersion, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Template, error)
}

// formRepo reads the forms of a template version.
type formRepo interface {
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error)
}

// blobStore reads template sources and stores artifacts.
type blobStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// renderer converts a substituted document into its output format.
type renderer interface {
	Render(ctx context.Context, doc *docx.Document, format domain.OutputFormat) (convert.Result, error)
}

// Enqueuer hands a PENDING document to the asynchronous workers. Enqueue
// reports false when the document could not be queued right away.
type Enqueuer interface {
	Enqueue(id uuid.UUID) bool
}

// jobRecorder observes finished generation attempts.
type jobRecorder interface {
	RecordJob(status, format string, duration time.Duration)
}

// txManager defines the transaction manager interface needed by the service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides document generation operations.
type Service struct {
	docs      documentRepo
	audit     auditRepo
	templates templateRepo
	forms     formRepo
	blobs     blobStore
	render    renderer
	queue     Enqueuer
	jobs      jobRecorder
	tx        txManager
	cfg       config.GenerationConfig
	log       *slog.Logger
}

// Deps groups the collaborators of the service.
type Deps struct {
	Documents documentRepo
	Audit     auditRepo
	Templates templateRepo
	Forms     formRepo
	Blobs     blobStore
	Renderer  renderer
	Queue     Enqueuer
	Jobs      jobRecorder
	Tx        txManager
}

// NewService creates a new document service. Queue may be nil in sync mode;
// Jobs may be nil when metrics are disabled.
func NewService(log *slog.Logger, deps Deps, cfg config.GenerationConfig) *Service {
	return &Service{
		docs:      deps.Documents,
		audit:     deps.Audit,
		templates: deps.Templates,
		forms:     deps.Forms,
		blobs:     deps.Blobs,
		render:    deps.Renderer,
		queue:     deps.Queue,
		jobs:      deps.Jobs,
		tx:        deps.Tx,
		cfg:       cfg,
		log:       log.With("service", "document"),
	}
}
