package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/pkg/ctxutil"
)

// loadOwned returns the document when the caller may access it. A document
// owned by someone else is reported as not found.
func (s *Service) loadOwned(ctx context.Context, id uuid.UUID) (domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document: %w", err)
	}
	if ctxutil.IsAdminCtx(ctx) {
		return doc, nil
	}
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !doc.AccessibleBy(userID, ok) {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

// auditEntry builds an entry for the caller found in ctx.
func auditEntry(ctx context.Context, documentID uuid.UUID, action domain.AuditAction, details map[string]any) domain.AuditEntry {
	e := domain.AuditEntry{
		ID:         uuid.New(),
		DocumentID: documentID,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if userID, ok := ctxutil.UserIDFromCtx(ctx); ok {
		e.ActorID = &userID
	}
	if ip := ctxutil.ClientIPFromCtx(ctx); ip != "" {
		e.IP = &ip
	}
	return e
}

func (s *Service) appendAudit(ctx context.Context, documentID uuid.UUID, action domain.AuditAction, details map[string]any) error {
	if _, err := s.audit.Append(ctx, auditEntry(ctx, documentID, action, details)); err != nil {
		return fmt.Errorf("append %s audit entry: %w", action, err)
	}
	return nil
}
