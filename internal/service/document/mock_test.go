package document

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/docx"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/render/convert"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
//
// Without an override, mockDocumentRepo and mockAuditRepo keep their rows in
// memory and apply the same conditional updates as the postgres adapters.
// ===========================================================================

type mockDocumentRepo struct {
	CreateFunc      func(ctx context.Context, d domain.Document) (domain.Document, error)
	LockAttemptFunc func(ctx context.Context, id uuid.UUID, attempt int) error
	ListFunc        func(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error)

	mu   sync.Mutex
	rows map[uuid.UUID]domain.Document
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{rows: make(map[uuid.UUID]domain.Document)}
}

func (m *mockDocumentRepo) Create(ctx context.Context, d domain.Document) (domain.Document, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[d.ID]; ok {
		return domain.Document{}, domain.ErrAlreadyExists
	}
	m.rows[d.ID] = d
	return d, nil
}

func (m *mockDocumentRepo) Claim(_ context.Context, id uuid.UUID, at time.Time) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.get(id)
	if err != nil {
		return domain.Document{}, err
	}
	if d.Status != domain.DocumentStatusPending {
		return domain.Document{}, fmt.Errorf("document %s is %s: %w", id, d.Status, domain.ErrConflict)
	}
	d.Status = domain.DocumentStatusProcessing
	d.Attempt++
	d.UpdatedAt = at
	m.rows[id] = d
	return d, nil
}

func (m *mockDocumentRepo) LockAttempt(ctx context.Context, id uuid.UUID, attempt int) error {
	if m.LockAttemptFunc != nil {
		return m.LockAttemptFunc(ctx, id, attempt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.get(id)
	if err != nil {
		return err
	}
	if d.Status != domain.DocumentStatusProcessing || d.Attempt != attempt {
		return domain.ErrConflict
	}
	return nil
}

func (m *mockDocumentRepo) Complete(_ context.Context, id uuid.UUID, attempt int, a domain.Artifact, at time.Time) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.get(id)
	if err != nil {
		return domain.Document{}, err
	}
	if d.Status != domain.DocumentStatusProcessing || d.Attempt != attempt {
		return domain.Document{}, domain.ErrConflict
	}
	d.Status = domain.DocumentStatusCompleted
	d.OutputKey = &a.Key
	d.Filename = &a.Filename
	d.ContentType = &a.ContentType
	d.SizeBytes = a.Size
	d.ErrorLog = nil
	d.CompletedAt = &at
	d.UpdatedAt = at
	m.rows[id] = d
	return d, nil
}

func (m *mockDocumentRepo) Fail(_ context.Context, id uuid.UUID, attempt int, cause string, at time.Time) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.get(id)
	if err != nil {
		return domain.Document{}, err
	}
	if d.Status.IsTerminal() || d.Attempt != attempt {
		return domain.Document{}, domain.ErrConflict
	}
	d.Status = domain.DocumentStatusFailed
	d.ErrorLog = &cause
	d.OutputKey, d.Filename, d.ContentType, d.CompletedAt = nil, nil, nil, nil
	d.SizeBytes = 0
	d.UpdatedAt = at
	m.rows[id] = d
	return d, nil
}

func (m *mockDocumentRepo) ResetForRetry(_ context.Context, id uuid.UUID, at time.Time) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, err := m.get(id)
	if err != nil {
		return domain.Document{}, err
	}
	if d.Status != domain.DocumentStatusFailed {
		return domain.Document{}, &domain.TransitionError{From: d.Status, To: domain.DocumentStatusPending}
	}
	d.Status = domain.DocumentStatusPending
	d.ErrorLog = nil
	d.UpdatedAt = at
	m.rows[id] = d
	return d, nil
}

func (m *mockDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.get(id); err != nil {
		return err
	}
	delete(m.rows, id)
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *mockDocumentRepo) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Document
	for _, d := range m.rows {
		if filter.OwnerID != nil && (d.OwnerID == nil || *d.OwnerID != *filter.OwnerID) {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *mockDocumentRepo) get(id uuid.UUID) (domain.Document, error) {
	d, ok := m.rows[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return d, nil
}

func (m *mockDocumentRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type mockAuditRepo struct {
	AppendFunc func(ctx context.Context, e domain.AuditEntry) (domain.AuditEntry, error)

	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (m *mockAuditRepo) Append(ctx context.Context, e domain.AuditEntry) (domain.AuditEntry, error) {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *mockAuditRepo) ListByDocument(_ context.Context, documentID uuid.UUID) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range m.entries {
		if e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAuditRepo) actions(documentID uuid.UUID) []domain.AuditAction {
	entries, _ := m.ListByDocument(context.Background(), documentID)
	out := make([]domain.AuditAction, len(entries))
	for i, e := range entries {
		out[i] = e.Action
	}
	return out
}

type mockTemplateRepo struct {
	GetVersionFunc func(ctx context.Context, id uuid.UUID) (domain.TemplateVersion, error)

	templates map[uuid.UUID]domain.Template
	versions  map[uuid.UUID]domain.TemplateVersion
}

func (m *mockTemplateRepo) GetVersion(ctx context.Context, id uuid.UUID) (domain.TemplateVersion, error) {
	if m.GetVersionFunc != nil {
		return m.GetVersionFunc(ctx, id)
	}
	v, ok := m.versions[id]
	if !ok {
		return domain.TemplateVersion{}, fmt.Errorf("template_version %s: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return domain.Template{}, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

type mockFormRepo struct {
	ListByVersionFunc func(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error)
}

func (m *mockFormRepo) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error) {
	if m.ListByVersionFunc != nil {
		return m.ListByVersionFunc(ctx, versionID)
	}
	return nil, nil
}

type mockRenderer struct {
	RenderFunc func(ctx context.Context, doc *docx.Document, format domain.OutputFormat) (convert.Result, error)
}

func (m *mockRenderer) Render(ctx context.Context, doc *docx.Document, format domain.OutputFormat) (convert.Result, error) {
	return m.RenderFunc(ctx, doc, format)
}

type mockQueue struct {
	full bool

	mu  sync.Mutex
	ids []uuid.UUID
}

func (m *mockQueue) Enqueue(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.full {
		return false
	}
	m.ids = append(m.ids, id)
	return true
}

func (m *mockQueue) enqueued() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.ids...)
}

type mockJobRecorder struct {
	mu       sync.Mutex
	statuses []string
}

func (m *mockJobRecorder) RecordJob(status, _ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}
