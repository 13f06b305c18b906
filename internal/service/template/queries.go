package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// GetTemplate returns a template with all its versions, newest first.
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (domain.Template, error) {
	tpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return domain.Template{}, fmt.Errorf("get template: %w", err)
	}
	versions, err := s.templates.ListVersions(ctx, id)
	if err != nil {
		return domain.Template{}, fmt.Errorf("list versions: %w", err)
	}
	tpl.Versions = versions
	return tpl, nil
}

// ListTemplates returns a page of templates.
func (s *Service) ListTemplates(ctx context.Context, input ListTemplatesInput) (*ListResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	templates, total, err := s.templates.List(ctx, domain.TemplateFilter{
		Search:   input.Search,
		Category: input.Category,
		Limit:    domain.ClampLimit(input.Limit),
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return &ListResult{Templates: templates, Total: total}, nil
}

// ListVersions returns every version of a template, newest first.
func (s *Service) ListVersions(ctx context.Context, templateID uuid.UUID) ([]domain.TemplateVersion, error) {
	if _, err := s.templates.GetByID(ctx, templateID); err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	versions, err := s.templates.ListVersions(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// CurrentVersion returns the active version of a template.
func (s *Service) CurrentVersion(ctx context.Context, templateID uuid.UUID) (domain.TemplateVersion, error) {
	v, err := s.templates.ActiveVersion(ctx, templateID)
	if err != nil {
		return domain.TemplateVersion{}, fmt.Errorf("active version: %w", err)
	}
	return v, nil
}

// GetVersion returns a version by id.
func (s *Service) GetVersion(ctx context.Context, versionID uuid.UUID) (domain.TemplateVersion, error) {
	v, err := s.templates.GetVersion(ctx, versionID)
	if err != nil {
		return domain.TemplateVersion{}, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// GetSchema returns the input schema of the active version of a template.
func (s *Service) GetSchema(ctx context.Context, templateID uuid.UUID) (domain.InputSchema, error) {
	v, err := s.CurrentVersion(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if v.InputSchema == nil {
		return domain.InputSchema{}, nil
	}
	return v.InputSchema, nil
}

// GetForms returns the forms of a version with their questions.
func (s *Service) GetForms(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error) {
	if _, err := s.templates.GetVersion(ctx, versionID); err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	forms, err := s.forms.ListByVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return forms, nil
}
