package template

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/adapter/storage/blob"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/render/extract"
	"github.com/GraceHermine/GenerateurDocument/pkg/ctxutil"
)

// CreateTemplate stores the source file and creates the template, its
// active version 1 and the form derived from the source placeholders.
// An unreadable source still creates the template, with an empty form.
func (s *Service) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*CreateResult, error) {
	actorID, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tpl := domain.Template{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		CreatedBy:   &actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	version, form := s.newVersion(tpl, 1, input.SourceFilename, input.Source, input.InputSchema, input.ChangeLog, now)
	version.IsActive = true

	if _, err := s.blobs.Put(ctx, version.SourceKey, input.Source); err != nil {
		return nil, fmt.Errorf("store template source: %w", err)
	}

	var result CreateResult
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := s.templates.Create(ctx, tpl)
		if err != nil {
			return fmt.Errorf("create template: %w", err)
		}
		v, err := s.templates.CreateVersion(ctx, version)
		if err != nil {
			return fmt.Errorf("create template version: %w", err)
		}
		f, err := s.forms.Create(ctx, form)
		if err != nil {
			return fmt.Errorf("create form: %w", err)
		}
		result = CreateResult{Template: created, Version: v, Form: f}
		return nil
	})
	if err != nil {
		s.discardSource(ctx, version.SourceKey)
		return nil, err
	}

	s.log.InfoContext(ctx, "template created",
		slog.String("template_id", tpl.ID.String()),
		slog.String("title", tpl.Title),
		slog.Int("questions", len(form.Questions)),
	)

	return &result, nil
}

// newVersion prepares a version and its form from an uploaded source.
// The declared schema wins; otherwise the schema is derived from the form.
func (s *Service) newVersion(
	tpl domain.Template,
	number int,
	filename string,
	source []byte,
	schema domain.InputSchema,
	changeLog string,
	now time.Time,
) (domain.TemplateVersion, domain.Form) {
	v := domain.TemplateVersion{
		ID:             uuid.New(),
		TemplateID:     tpl.ID,
		VersionNumber:  number,
		SourceKey:      blob.TemplateKey(tpl.ID, number),
		SourceFilename: filename,
		ChangeLog:      strings.TrimSpace(changeLog),
		CreatedAt:      now,
	}

	vars := extract.FromBytes(source, s.log)
	form := BuildForm(tpl.Title, v.ID, vars, now)

	if len(schema) > 0 {
		v.InputSchema = normalizeSchema(schema)
	} else {
		v.InputSchema = domain.SchemaFromQuestions(form.Questions)
	}
	return v, form
}

// discardSource removes a stored source whose records could not be saved.
func (s *Service) discardSource(ctx context.Context, key string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.WarnContext(ctx, "discard template source failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// normalizeSchema fills missing field types with text.
func normalizeSchema(schema domain.InputSchema) domain.InputSchema {
	out := make(domain.InputSchema, len(schema))
	for k, f := range schema {
		if f.Type == "" {
			f.Type = domain.FieldTypeText
		}
		out[strings.TrimSpace(k)] = f
	}
	return out
}

// requireAdmin returns the caller id when the caller may manage templates.
func requireAdmin(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	if !ctxutil.IsAdminCtx(ctx) {
		return uuid.Nil, domain.ErrForbidden
	}
	return userID, nil
}
