package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// Retry moves a FAILED document back to PENDING and resubmits it. Any other
// status is rejected with a *domain.TransitionError. Previous audit entries
// are kept.
func (s *Service) Retry(ctx context.Context, id uuid.UUID) (*StatusResult, error) {
	doc, err := s.loadOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.EnsureTransition(doc.Status, domain.DocumentStatusPending); err != nil {
		return nil, fmt.Errorf("retry document %s: %w", id, err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		reset, err := s.docs.ResetForRetry(ctx, id, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("reset document: %w", err)
		}
		doc = reset
		return s.appendAudit(ctx, id, domain.AuditActionRetry, map[string]any{
			"previous_attempt": reset.Attempt,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "document retried",
		slog.String("document_id", id.String()),
		slog.String("status", doc.Status.String()),
		slog.Int("attempt", doc.Attempt),
	)

	if !s.cfg.Synchronous() {
		s.submit(ctx, id)
		return statusResult(doc), nil
	}

	if err := s.Run(ctx, id); err != nil {
		return nil, err
	}
	current, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return statusResult(current), nil
}
