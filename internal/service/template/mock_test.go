package template

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockTemplateRepo struct {
	CreateFunc             func(ctx context.Context, t domain.Template) (domain.Template, error)
	TouchFunc              func(ctx context.Context, id uuid.UUID, at time.Time) error
	CreateVersionFunc      func(ctx context.Context, v domain.TemplateVersion) (domain.TemplateVersion, error)
	DeactivateVersionsFunc func(ctx context.Context, templateID uuid.UUID) error
	SetActiveFunc          func(ctx context.Context, templateID uuid.UUID, n int) (domain.TemplateVersion, error)
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (domain.Template, error)
	LockForUpdateFunc      func(ctx context.Context, id uuid.UUID) error
	ListFunc               func(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, int, error)
	GetVersionFunc         func(ctx context.Context, id uuid.UUID) (domain.TemplateVersion, error)
	ActiveVersionFunc      func(ctx context.Context, templateID uuid.UUID) (domain.TemplateVersion, error)
	ListVersionsFunc       func(ctx context.Context, templateID uuid.UUID) ([]domain.TemplateVersion, error)
	MaxVersionNumberFunc   func(ctx context.Context, templateID uuid.UUID) (int, error)

	mu             sync.Mutex
	deactivated    []uuid.UUID
	createdVersion []domain.TemplateVersion
}

func (m *mockTemplateRepo) Create(ctx context.Context, t domain.Template) (domain.Template, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	return t, nil
}

func (m *mockTemplateRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, id, at)
	}
	return nil
}

func (m *mockTemplateRepo) CreateVersion(ctx context.Context, v domain.TemplateVersion) (domain.TemplateVersion, error) {
	m.mu.Lock()
	m.createdVersion = append(m.createdVersion, v)
	m.mu.Unlock()
	if m.CreateVersionFunc != nil {
		return m.CreateVersionFunc(ctx, v)
	}
	return v, nil
}

func (m *mockTemplateRepo) DeactivateVersions(ctx context.Context, templateID uuid.UUID) error {
	m.mu.Lock()
	m.deactivated = append(m.deactivated, templateID)
	m.mu.Unlock()
	if m.DeactivateVersionsFunc != nil {
		return m.DeactivateVersionsFunc(ctx, templateID)
	}
	return nil
}

func (m *mockTemplateRepo) SetActive(ctx context.Context, templateID uuid.UUID, n int) (domain.TemplateVersion, error) {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, templateID, n)
	}
	return domain.TemplateVersion{TemplateID: templateID, VersionNumber: n, IsActive: true}, nil
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Template, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return domain.Template{}, domain.ErrNotFound
}

func (m *mockTemplateRepo) LockForUpdate(ctx context.Context, id uuid.UUID) error {
	if m.LockForUpdateFunc != nil {
		return m.LockForUpdateFunc(ctx, id)
	}
	return nil
}

func (m *mockTemplateRepo) List(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockTemplateRepo) GetVersion(ctx context.Context, id uuid.UUID) (domain.TemplateVersion, error) {
	if m.GetVersionFunc != nil {
		return m.GetVersionFunc(ctx, id)
	}
	return domain.TemplateVersion{}, domain.ErrNotFound
}

func (m *mockTemplateRepo) ActiveVersion(ctx context.Context, templateID uuid.UUID) (domain.TemplateVersion, error) {
	if m.ActiveVersionFunc != nil {
		return m.ActiveVersionFunc(ctx, templateID)
	}
	return domain.TemplateVersion{}, domain.ErrNotFound
}

func (m *mockTemplateRepo) ListVersions(ctx context.Context, templateID uuid.UUID) ([]domain.TemplateVersion, error) {
	if m.ListVersionsFunc != nil {
		return m.ListVersionsFunc(ctx, templateID)
	}
	return nil, nil
}

func (m *mockTemplateRepo) MaxVersionNumber(ctx context.Context, templateID uuid.UUID) (int, error) {
	if m.MaxVersionNumberFunc != nil {
		return m.MaxVersionNumberFunc(ctx, templateID)
	}
	return 0, nil
}

type mockFormRepo struct {
	CreateFunc         func(ctx context.Context, f domain.Form) (domain.Form, error)
	UpdateQuestionFunc func(ctx context.Context, q domain.Question) (domain.Question, error)
	GetQuestionFunc    func(ctx context.Context, id uuid.UUID) (domain.Question, error)
	ListByVersionFunc  func(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error)
}

func (m *mockFormRepo) Create(ctx context.Context, f domain.Form) (domain.Form, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, f)
	}
	return f, nil
}

func (m *mockFormRepo) UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	if m.UpdateQuestionFunc != nil {
		return m.UpdateQuestionFunc(ctx, q)
	}
	return q, nil
}

func (m *mockFormRepo) GetQuestion(ctx context.Context, id uuid.UUID) (domain.Question, error) {
	if m.GetQuestionFunc != nil {
		return m.GetQuestionFunc(ctx, id)
	}
	return domain.Question{}, domain.ErrNotFound
}

func (m *mockFormRepo) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error) {
	if m.ListByVersionFunc != nil {
		return m.ListByVersionFunc(ctx, versionID)
	}
	return nil, nil
}

type mockBlobStore struct {
	PutFunc func(ctx context.Context, key string, data []byte) (string, error)

	mu      sync.Mutex
	put     []string
	deleted []string
}

func (m *mockBlobStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	m.put = append(m.put, key)
	m.mu.Unlock()
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, data)
	}
	return key, nil
}

func (m *mockBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, key)
	m.mu.Unlock()
	return nil
}

type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}
