// Package template manages templates, their immutable versions and the
// forms derived from each version's placeholders.
package template

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// templateRepo defines the template/version repository interface needed by the service.
type templateRepo interface {
	Create(ctx context.Context, t domain.Template) (domain.Template, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	CreateVersion(ctx context.Context, v domain.TemplateVersion) (domain.TemplateVersion, error)
	DeactivateVersions(ctx context.Context, templateID uuid.UUID) error
	SetActive(ctx context.Context, templateID uuid.UUID, versionNumber int) (domain.TemplateVersion, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Template, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, int, error)
	GetVersion(ctx context.Context, id uuid.UUID) (domain.TemplateVersion, error)
	ActiveVersion(ctx context.Context, templateID uuid.UUID) (domain.TemplateVersion, error)
	ListVersions(ctx context.Context, templateID uuid.UUID) ([]domain.TemplateVersion, error)
	MaxVersionNumber(ctx context.Context, templateID uuid.UUID) (int, error)
}

// formRepo defines the form/question repository interface needed by the service.
type formRepo interface {
	Create(ctx context.Context, f domain.Form) (domain.Form, error)
	UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (domain.Question, error)
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error)
}

// blobStore stores template source files.
type blobStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// txManager defines the transaction manager interface needed by the service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides template management operations.
type Service struct {
	templates templateRepo
	forms     formRepo
	blobs     blobStore
	tx        txManager
	log       *slog.Logger
}

// NewService creates a new template service.
func NewService(
	log *slog.Logger,
	templates templateRepo,
	forms formRepo,
	blobs blobStore,
	tx txManager,
) *Service {
	return &Service{
		templates: templates,
		forms:     forms,
		blobs:     blobs,
		tx:        tx,
		log:       log.With("service", "template"),
	}
}
