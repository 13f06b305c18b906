package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/service/document"
	"github.com/GraceHermine/GenerateurDocument/internal/service/template"
)

var (
	_ templateService = &templateServiceMock{}
	_ documentService = &documentServiceMock{}
)

type templateServiceMock struct {
	CreateTemplateFunc  func(ctx context.Context, input template.CreateTemplateInput) (*template.CreateResult, error)
	CreateVersionFunc   func(ctx context.Context, input template.CreateVersionInput) (*template.CreateResult, error)
	ActivateVersionFunc func(ctx context.Context, templateID uuid.UUID, versionNumber int) (domain.TemplateVersion, error)
	GetTemplateFunc     func(ctx context.Context, id uuid.UUID) (domain.Template, error)
	ListTemplatesFunc   func(ctx context.Context, input template.ListTemplatesInput) (*template.ListResult, error)
	GetSchemaFunc       func(ctx context.Context, templateID uuid.UUID) (domain.InputSchema, error)
	GetFormsFunc        func(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error)
	UpdateQuestionFunc  func(ctx context.Context, input template.UpdateQuestionInput) (domain.Question, error)
}

func (m *templateServiceMock) CreateTemplate(ctx context.Context, input template.CreateTemplateInput) (*template.CreateResult, error) {
	return m.CreateTemplateFunc(ctx, input)
}

func (m *templateServiceMock) CreateVersion(ctx context.Context, input template.CreateVersionInput) (*template.CreateResult, error) {
	return m.CreateVersionFunc(ctx, input)
}

func (m *templateServiceMock) ActivateVersion(ctx context.Context, templateID uuid.UUID, versionNumber int) (domain.TemplateVersion, error) {
	return m.ActivateVersionFunc(ctx, templateID, versionNumber)
}

func (m *templateServiceMock) GetTemplate(ctx context.Context, id uuid.UUID) (domain.Template, error) {
	return m.GetTemplateFunc(ctx, id)
}

func (m *templateServiceMock) ListTemplates(ctx context.Context, input template.ListTemplatesInput) (*template.ListResult, error) {
	return m.ListTemplatesFunc(ctx, input)
}

func (m *templateServiceMock) GetSchema(ctx context.Context, templateID uuid.UUID) (domain.InputSchema, error) {
	return m.GetSchemaFunc(ctx, templateID)
}

func (m *templateServiceMock) GetForms(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error) {
	return m.GetFormsFunc(ctx, versionID)
}

func (m *templateServiceMock) UpdateQuestion(ctx context.Context, input template.UpdateQuestionInput) (domain.Question, error) {
	return m.UpdateQuestionFunc(ctx, input)
}

type documentServiceMock struct {
	GenerateFunc func(ctx context.Context, input document.GenerateInput) (*document.GenerateResult, error)
	StatusFunc   func(ctx context.Context, id uuid.UUID) (*document.StatusResult, error)
	DownloadFunc func(ctx context.Context, id uuid.UUID) (*document.DownloadResult, error)
	RetryFunc    func(ctx context.Context, id uuid.UUID) (*document.StatusResult, error)
	DeleteFunc   func(ctx context.Context, id uuid.UUID) error
	ListFunc     func(ctx context.Context, input document.ListInput) (*document.ListResult, error)
	HistoryFunc  func(ctx context.Context, id uuid.UUID) ([]domain.AuditEntry, error)
}

func (m *documentServiceMock) Generate(ctx context.Context, input document.GenerateInput) (*document.GenerateResult, error) {
	return m.GenerateFunc(ctx, input)
}

func (m *documentServiceMock) Status(ctx context.Context, id uuid.UUID) (*document.StatusResult, error) {
	return m.StatusFunc(ctx, id)
}

func (m *documentServiceMock) Download(ctx context.Context, id uuid.UUID) (*document.DownloadResult, error) {
	return m.DownloadFunc(ctx, id)
}

func (m *documentServiceMock) Retry(ctx context.Context, id uuid.UUID) (*document.StatusResult, error) {
	return m.RetryFunc(ctx, id)
}

func (m *documentServiceMock) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}

func (m *documentServiceMock) List(ctx context.Context, input document.ListInput) (*document.ListResult, error) {
	return m.ListFunc(ctx, input)
}

func (m *documentServiceMock) History(ctx context.Context, id uuid.UUID) ([]domain.AuditEntry, error) {
	return m.HistoryFunc(ctx, id)
}
