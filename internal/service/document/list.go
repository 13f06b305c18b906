package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/pkg/ctxutil"
)

// List returns the caller's documents, newest first. Admins see every
// document.
func (s *Service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	filter := domain.DocumentFilter{
		Status:     input.Status,
		TemplateID: input.TemplateID,
		Limit:      domain.ClampLimit(input.Limit),
		Offset:     input.Offset,
	}
	if !ctxutil.IsAdminCtx(ctx) {
		filter.OwnerID = &userID
	}

	docs, total, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return &ListResult{Documents: docs, Total: total}, nil
}

// History returns the audit entries of a document in chronological order.
// Admins may read the history of a deleted document.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]domain.AuditEntry, error) {
	_, err := s.loadOwned(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound) && ctxutil.IsAdminCtx(ctx):
		entries, listErr := s.audit.ListByDocument(ctx, id)
		if listErr != nil {
			return nil, fmt.Errorf("list audit entries: %w", listErr)
		}
		if len(entries) == 0 {
			return nil, err
		}
		return entries, nil
	default:
		return nil, err
	}

	entries, err := s.audit.ListByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
