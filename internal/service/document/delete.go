package document

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/adapter/storage/blob"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// Delete records a DELETED audit entry, removes the document and then its
// artifact. The audit entry outlives the document.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.loadOwned(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.appendAudit(ctx, id, domain.AuditActionDeleted, map[string]any{
			"status": doc.Status.String(),
		}); err != nil {
			return err
		}
		if err := s.docs.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The row is gone; a leftover file is only logged.
	key := s.artifactKey(doc)
	if err := s.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.WarnContext(ctx, "delete artifact failed",
			slog.String("document_id", id.String()),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	s.log.InfoContext(ctx, "document deleted",
		slog.String("document_id", id.String()),
		slog.String("status", doc.Status.String()),
	)
	return nil
}

// artifactKey returns the recorded output key or, for unfinished attempts,
// the key an attempt would write to.
func (s *Service) artifactKey(doc domain.Document) string {
	if doc.OutputKey != nil {
		return *doc.OutputKey
	}
	return blob.DocumentKey(doc.ID, doc.Format)
}
