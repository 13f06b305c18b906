package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/pkg/ctxutil"
)

// Generate validates a submission against the referenced template version
// and creates a generation job together with its GENERATE audit entry.
//
// In sync mode the job is created PROCESSING and rendered before Generate
// returns; the returned document is then COMPLETED or FAILED. In async mode
// it is created PENDING and handed to the workers.
func (s *Service) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	userID, authenticated := ctxutil.UserIDFromCtx(ctx)
	if !authenticated && !s.cfg.AllowAnonymous {
		return nil, domain.ErrUnauthorized
	}

	format, err := input.Validate()
	if err != nil {
		return nil, err
	}

	version, err := s.templates.GetVersion(ctx, input.TemplateVersionID)
	if err != nil {
		return nil, fmt.Errorf("get template version: %w", err)
	}

	var answers []domain.Answer
	if input.UsesAnswers() {
		forms, err := s.forms.ListByVersion(ctx, version.ID)
		if err != nil {
			return nil, fmt.Errorf("list forms: %w", err)
		}
		if answers, err = ValidateAnswers(forms, input.Answers); err != nil {
			return nil, err
		}
	} else if err := ValidateData(version.InputSchema, input.Data); err != nil {
		return nil, err
	}

	inline := s.cfg.Synchronous()
	now := time.Now().UTC()
	doc := domain.Document{
		ID:                uuid.New(),
		TemplateVersionID: version.ID,
		Format:            format,
		InputData:         input.Data,
		Answers:           answers,
		Status:            domain.InitialStatus(inline),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if inline {
		doc.Attempt = 1
	}
	if authenticated {
		doc.OwnerID = &userID
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := s.docs.Create(ctx, doc)
		if err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		doc = created
		return s.appendAudit(ctx, doc.ID, domain.AuditActionGenerate, map[string]any{
			"format":              string(format),
			"mode":                s.cfg.Mode,
			"template_version_id": version.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "document created",
		slog.String("document_id", doc.ID.String()),
		slog.String("status", doc.Status.String()),
		slog.String("format", doc.Format.String()),
		slog.String("mode", s.cfg.Mode),
	)

	if inline {
		doc = s.execute(ctx, doc)
	} else {
		s.submit(ctx, doc.ID)
	}

	return &GenerateResult{Document: doc}, nil
}

// submit enqueues a PENDING document. A full queue is not an error: the
// recovery loop picks the document up later.
func (s *Service) submit(ctx context.Context, id uuid.UUID) {
	if s.queue != nil && s.queue.Enqueue(id) {
		return
	}
	s.log.WarnContext(ctx, "document not enqueued, left for recovery",
		slog.String("document_id", id.String()),
	)
}
