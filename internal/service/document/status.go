package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// Status returns the current state of a document owned by the caller.
func (s *Service) Status(ctx context.Context, id uuid.UUID) (*StatusResult, error) {
	doc, err := s.loadOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	return statusResult(doc), nil
}

// Download returns the artifact of a COMPLETED document and records a
// DOWNLOADED audit entry once the bytes were read.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (*DownloadResult, error) {
	doc, err := s.loadOwned(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.HasArtifact() {
		return nil, fmt.Errorf("document %s is %s: %w", id, doc.Status, domain.ErrNotReady)
	}

	data, err := s.blobs.Get(ctx, *doc.OutputKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.ErrorContext(ctx, "artifact missing for completed document",
				slog.String("document_id", id.String()),
				slog.String("key", *doc.OutputKey),
			)
		}
		return nil, fmt.Errorf("read artifact: %w: %v", domain.ErrStorage, err)
	}

	if err := s.appendAudit(ctx, id, domain.AuditActionDownloaded, map[string]any{
		"filename": deref(doc.Filename),
		"size":     len(data),
	}); err != nil {
		return nil, err
	}

	contentType := deref(doc.ContentType)
	if contentType == "" {
		contentType = doc.Format.ContentType()
	}
	return &DownloadResult{
		Data:        data,
		Filename:    deref(doc.Filename),
		ContentType: contentType,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
