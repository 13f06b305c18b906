package template

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CreateVersion adds a new immutable version numbered after the highest
// existing one. Existing versions are never modified; with Activate set the
// new version replaces the active one in the same transaction.
func (s *Service) CreateVersion(ctx context.Context, input CreateVersionInput) (*CreateResult, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		result    CreateResult
		sourceKey string
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Serializes version numbering per template.
		if err := s.templates.LockForUpdate(ctx, input.TemplateID); err != nil {
			return fmt.Errorf("lock template: %w", err)
		}
		tpl, err := s.templates.GetByID(ctx, input.TemplateID)
		if err != nil {
			return fmt.Errorf("get template: %w", err)
		}
		maxNumber, err := s.templates.MaxVersionNumber(ctx, tpl.ID)
		if err != nil {
			return fmt.Errorf("max version number: %w", err)
		}

		now := time.Now().UTC()
		version, form := s.newVersion(tpl, maxNumber+1, input.SourceFilename, input.Source, input.InputSchema, input.ChangeLog, now)
		version.IsActive = input.Activate

		if _, err := s.blobs.Put(ctx, version.SourceKey, input.Source); err != nil {
			return fmt.Errorf("store template source: %w", err)
		}
		sourceKey = version.SourceKey

		if input.Activate {
			if err := s.templates.DeactivateVersions(ctx, tpl.ID); err != nil {
				return fmt.Errorf("deactivate versions: %w", err)
			}
		}
		v, err := s.templates.CreateVersion(ctx, version)
		if err != nil {
			return fmt.Errorf("create template version: %w", err)
		}
		f, err := s.forms.Create(ctx, form)
		if err != nil {
			return fmt.Errorf("create form: %w", err)
		}
		if err := s.templates.Touch(ctx, tpl.ID, now); err != nil {
			return fmt.Errorf("touch template: %w", err)
		}
		tpl.UpdatedAt = now

		result = CreateResult{Template: tpl, Version: v, Form: f}
		return nil
	})
	if err != nil {
		if sourceKey != "" {
			s.discardSource(ctx, sourceKey)
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "template version created",
		slog.String("template_id", input.TemplateID.String()),
		slog.Int("version", result.Version.VersionNumber),
		slog.Bool("active", result.Version.IsActive),
	)

	return &result, nil
}
