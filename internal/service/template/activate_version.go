package template

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// ActivateVersion makes the given version the only active version of its
// template.
func (s *Service) ActivateVersion(ctx context.Context, templateID uuid.UUID, versionNumber int) (domain.TemplateVersion, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return domain.TemplateVersion{}, err
	}
	if templateID == uuid.Nil {
		return domain.TemplateVersion{}, domain.NewValidationError("template_id", "required")
	}
	if versionNumber < 1 {
		return domain.TemplateVersion{}, domain.NewValidationError("version", "must be positive")
	}

	var activated domain.TemplateVersion
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.templates.LockForUpdate(ctx, templateID); err != nil {
			return fmt.Errorf("lock template: %w", err)
		}
		if err := s.templates.DeactivateVersions(ctx, templateID); err != nil {
			return fmt.Errorf("deactivate versions: %w", err)
		}
		v, err := s.templates.SetActive(ctx, templateID, versionNumber)
		if err != nil {
			return fmt.Errorf("activate version: %w", err)
		}
		if err := s.templates.Touch(ctx, templateID, time.Now().UTC()); err != nil {
			return fmt.Errorf("touch template: %w", err)
		}
		activated = v
		return nil
	})
	if err != nil {
		return domain.TemplateVersion{}, err
	}

	s.log.InfoContext(ctx, "template version activated",
		slog.String("template_id", templateID.String()),
		slog.Int("version", versionNumber),
	)

	return activated, nil
}
