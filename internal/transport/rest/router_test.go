package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GraceHermine/GenerateurDocument/internal/config"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/service/document"
	"github.com/GraceHermine/GenerateurDocument/internal/service/template"
	"github.com/GraceHermine/GenerateurDocument/internal/transport/middleware"
)

type routerOption func(*RouterDeps)

func newTestRouter(t *testing.T, tpl *templateServiceMock, docs *documentServiceMock, opts ...routerOption) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := RouterDeps{
		Logger:    log,
		Health:    NewHealthHandler(&pingerMock{}, nil, "test"),
		Templates: NewTemplateHandler(tpl, 1<<20, log),
		Documents: NewDocumentHandler(docs, log),
		Auth:      func(next http.Handler) http.Handler { return next },
		CORS:      config.CORSConfig{AllowedOrigins: "*"},
	}
	for _, o := range opts {
		o(&deps)
	}
	return NewRouter(deps)
}

func serve(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func completedDocument() domain.Document {
	now := time.Now().UTC()
	key := "documents/x.docx"
	name := "x_Invoice_20260101_120000.docx"
	return domain.Document{
		ID:                uuid.New(),
		TemplateVersionID: uuid.New(),
		Format:            domain.OutputFormatDOCX,
		Status:            domain.DocumentStatusCompleted,
		Attempt:           1,
		OutputKey:         &key,
		Filename:          &name,
		SizeBytes:         42,
		CreatedAt:         now,
		UpdatedAt:         now,
		CompletedAt:       &now,
	}
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

func TestDocuments_Generate_Completed(t *testing.T) {
	t.Parallel()

	doc := completedDocument()
	questionID := uuid.New()
	var got document.GenerateInput
	docs := &documentServiceMock{
		GenerateFunc: func(_ context.Context, input document.GenerateInput) (*document.GenerateResult, error) {
			got = input
			return &document.GenerateResult{Document: doc}, nil
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	body := fmt.Sprintf(`{"template_version_id":%q,"format":"docx","answers":[{"question_id":%q,"value":"Acme"}]}`,
		doc.TemplateVersionID, questionID)
	rec := serve(h, http.MethodPost, "/api/documents", strings.NewReader(body))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[documentResponse](t, rec)
	assert.Equal(t, doc.ID, resp.ID)
	assert.Equal(t, "COMPLETED", resp.Status)
	assert.Equal(t, document.DownloadPath(doc.ID), resp.DownloadURL)

	assert.Equal(t, doc.TemplateVersionID, got.TemplateVersionID)
	assert.Equal(t, "docx", got.Format)
	require.Len(t, got.Answers, 1)
	assert.Equal(t, questionID, *got.Answers[0].QuestionID)
	assert.Equal(t, "Acme", got.Answers[0].Value)
	assert.True(t, got.UsesAnswers())
}

func TestDocuments_Generate_KeepsLargeNumbers(t *testing.T) {
	t.Parallel()

	var got document.GenerateInput
	docs := &documentServiceMock{
		GenerateFunc: func(_ context.Context, input document.GenerateInput) (*document.GenerateResult, error) {
			got = input
			return &document.GenerateResult{Document: domain.Document{ID: uuid.New(), Status: domain.DocumentStatusPending}}, nil
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	body := fmt.Sprintf(`{"template_version_id":%q,"data":{"account":9007199254740993,"rate":0.1}}`, uuid.New())
	rec := serve(h, http.MethodPost, "/api/documents", strings.NewReader(body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, json.Number("9007199254740993"), got.Data["account"])
	assert.Equal(t, json.Number("0.1"), got.Data["rate"])
}

func TestDocuments_Generate_PendingHasNoDownloadURL(t *testing.T) {
	t.Parallel()

	doc := domain.Document{ID: uuid.New(), Format: domain.OutputFormatPDF, Status: domain.DocumentStatusPending}
	docs := &documentServiceMock{
		GenerateFunc: func(_ context.Context, input document.GenerateInput) (*document.GenerateResult, error) {
			assert.False(t, input.UsesAnswers())
			assert.Equal(t, "Acme", input.Data["client"])
			return &document.GenerateResult{Document: doc}, nil
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	body := fmt.Sprintf(`{"template_version_id":%q,"format":"pdf","data":{"client":"Acme"}}`, uuid.New())
	rec := serve(h, http.MethodPost, "/api/documents", strings.NewReader(body))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[documentResponse](t, rec)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Empty(t, resp.DownloadURL)
}

func TestDocuments_Generate_ValidationError(t *testing.T) {
	t.Parallel()

	docs := &documentServiceMock{
		GenerateFunc: func(context.Context, document.GenerateInput) (*document.GenerateResult, error) {
			return nil, domain.NewValidationErrors([]domain.FieldError{
				{Field: "data.client", Message: `"Client" is required`},
			})
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	rec := serve(h, http.MethodPost, "/api/documents", strings.NewReader(`{"data":{}}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "validation failed", resp.Error)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "data.client", resp.Fields[0].Field)
}

func TestDocuments_Generate_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &templateServiceMock{}, &documentServiceMock{})

	rec := serve(h, http.MethodPost, "/api/documents", strings.NewReader(`{"template":"x"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[errorResponse](t, rec)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "body", resp.Fields[0].Field)
}

func TestDocuments_Generate_RateLimited(t *testing.T) {
	t.Parallel()

	docs := &documentServiceMock{
		GenerateFunc: func(context.Context, document.GenerateInput) (*document.GenerateResult, error) {
			return &document.GenerateResult{Document: domain.Document{ID: uuid.New()}}, nil
		},
		ListFunc: func(context.Context, document.ListInput) (*document.ListResult, error) {
			return &document.ListResult{}, nil
		},
	}
	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)
	h := newTestRouter(t, &templateServiceMock{}, docs, func(d *RouterDeps) {
		d.GenerateLimit = limiter.Limit(1)
	})

	first := serve(h, http.MethodPost, "/api/documents", strings.NewReader(`{}`))
	second := serve(h, http.MethodPost, "/api/documents", strings.NewReader(`{}`))
	list := serve(h, http.MethodGet, "/api/documents", nil)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, list.Code)
}

func TestDocuments_Status_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("document x: %w", domain.ErrNotFound), http.StatusNotFound},
		{"forbidden hidden", domain.ErrForbidden, http.StatusNotFound},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			docs := &documentServiceMock{
				StatusFunc: func(context.Context, uuid.UUID) (*document.StatusResult, error) {
					return nil, tt.err
				},
			}
			h := newTestRouter(t, &templateServiceMock{}, docs)

			rec := serve(h, http.MethodGet, "/api/documents/"+uuid.NewString(), nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDocuments_Status_InvalidID(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &templateServiceMock{}, &documentServiceMock{})

	rec := serve(h, http.MethodGet, "/api/documents/not-a-uuid", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "id", resp.Fields[0].Field)
}

func TestDocuments_Download(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	docs := &documentServiceMock{
		DownloadFunc: func(_ context.Context, got uuid.UUID) (*document.DownloadResult, error) {
			assert.Equal(t, id, got)
			return &document.DownloadResult{
				Data:        []byte("%PDF-1.7"),
				Filename:    "Invoice_20260101_120000.pdf",
				ContentType: "application/pdf",
			}, nil
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	rec := serve(h, http.MethodGet, "/api/documents/"+id.String()+"/download", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Invoice_20260101_120000.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-1.7", rec.Body.String())
}

func TestDocuments_Download_NotReady(t *testing.T) {
	t.Parallel()

	docs := &documentServiceMock{
		DownloadFunc: func(context.Context, uuid.UUID) (*document.DownloadResult, error) {
			return nil, fmt.Errorf("document is PENDING: %w", domain.ErrNotReady)
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	rec := serve(h, http.MethodGet, "/api/documents/"+uuid.NewString()+"/download", nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "document not ready", decodeBody[errorResponse](t, rec).Error)
}

func TestDocuments_Retry(t *testing.T) {
	t.Parallel()

	doc := domain.Document{ID: uuid.New(), Status: domain.DocumentStatusPending, Attempt: 1}
	docs := &documentServiceMock{
		RetryFunc: func(context.Context, uuid.UUID) (*document.StatusResult, error) {
			return &document.StatusResult{Document: doc}, nil
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	rec := serve(h, http.MethodPost, "/api/documents/"+doc.ID.String()+"/retry", nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "PENDING", decodeBody[documentResponse](t, rec).Status)
}

func TestDocuments_Retry_RejectedTransition(t *testing.T) {
	t.Parallel()

	docs := &documentServiceMock{
		RetryFunc: func(context.Context, uuid.UUID) (*document.StatusResult, error) {
			return nil, &domain.TransitionError{From: domain.DocumentStatusCompleted, To: domain.DocumentStatusPending}
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	rec := serve(h, http.MethodPost, "/api/documents/"+uuid.NewString()+"/retry", nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "cannot move document from COMPLETED to PENDING", decodeBody[errorResponse](t, rec).Error)
}

func TestDocuments_Delete(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var deleted uuid.UUID
	docs := &documentServiceMock{
		DeleteFunc: func(_ context.Context, got uuid.UUID) error {
			deleted = got
			return nil
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	rec := serve(h, http.MethodDelete, "/api/documents/"+id.String(), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, deleted)
}

func TestDocuments_List_ParsesFilters(t *testing.T) {
	t.Parallel()

	templateID := uuid.New()
	doc := completedDocument()
	docs := &documentServiceMock{
		ListFunc: func(_ context.Context, input document.ListInput) (*document.ListResult, error) {
			require.NotNil(t, input.Status)
			assert.Equal(t, domain.DocumentStatusFailed, *input.Status)
			require.NotNil(t, input.TemplateID)
			assert.Equal(t, templateID, *input.TemplateID)
			assert.Equal(t, 10, input.Limit)
			assert.Equal(t, 20, input.Offset)
			return &document.ListResult{Documents: []domain.Document{doc}, Total: 21}, nil
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	rec := serve(h, http.MethodGet, "/api/documents?status=failed&template_id="+templateID.String()+"&limit=10&offset=20", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[documentListResponse](t, rec)
	assert.Equal(t, 21, resp.Total)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, doc.ID, resp.Documents[0].ID)
}

func TestDocuments_List_InvalidQuery(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &templateServiceMock{}, &documentServiceMock{})

	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/api/documents?limit=ten", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/api/documents?template_id=42", nil).Code)
}

func TestDocuments_History(t *testing.T) {
	t.Parallel()

	actor := uuid.New()
	ip := "203.0.113.7"
	entries := []domain.AuditEntry{
		{ID: uuid.New(), Action: domain.AuditActionGenerate, ActorID: &actor, IP: &ip, Details: map[string]any{"format": "PDF"}},
		{ID: uuid.New(), Action: domain.AuditActionDownloaded, ActorID: &actor, IP: &ip},
	}
	docs := &documentServiceMock{
		HistoryFunc: func(context.Context, uuid.UUID) ([]domain.AuditEntry, error) {
			return entries, nil
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	rec := serve(h, http.MethodGet, "/api/documents/"+uuid.NewString()+"/audit", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[[]auditEntryResponse](t, rec)
	require.Len(t, resp, 2)
	assert.Equal(t, "GENERATE", resp[0].Action)
	assert.Equal(t, "PDF", resp[0].Details["format"])
	assert.Equal(t, "DOWNLOADED", resp[1].Action)
	assert.Equal(t, ip, *resp[1].IP)
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

func multipartBody(t *testing.T, fields map[string]string, filename string, file []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("source", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func serveMultipart(h http.Handler, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTemplates_Create(t *testing.T) {
	t.Parallel()

	templateID := uuid.New()
	versionID := uuid.New()
	var got template.CreateTemplateInput
	tpl := &templateServiceMock{
		CreateTemplateFunc: func(_ context.Context, input template.CreateTemplateInput) (*template.CreateResult, error) {
			got = input
			return &template.CreateResult{
				Template: domain.Template{ID: templateID, Title: input.Title},
				Version: domain.TemplateVersion{
					ID: versionID, TemplateID: templateID, VersionNumber: 1, IsActive: true,
					SourceFilename: input.SourceFilename, InputSchema: input.InputSchema,
				},
				Form: domain.Form{
					ID: uuid.New(), TemplateVersionID: versionID, Title: input.Title,
					Questions: []domain.Question{{ID: uuid.New(), Label: "Client", Variable: "client", Type: domain.FieldTypeText, Required: true}},
				},
			}, nil
		},
	}
	h := newTestRouter(t, tpl, &documentServiceMock{})

	body, ct := multipartBody(t, map[string]string{
		"title":    "Invoice",
		"category": "billing",
		"schema":   `{"client":{"type":"text","required":true}}`,
	}, "invoice.docx", []byte("PK\x03\x04"))
	rec := serveMultipart(h, "/api/templates", body, ct)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[createTemplateResponse](t, rec)
	assert.Equal(t, templateID, resp.TemplateID)
	assert.Equal(t, 1, resp.Version.VersionNumber)
	require.Len(t, resp.Form.Questions, 1)
	assert.Equal(t, "client", resp.Form.Questions[0].Variable)
	assert.Equal(t, "text", resp.Form.Questions[0].Type)

	assert.Equal(t, "Invoice", got.Title)
	assert.Equal(t, "billing", got.Category)
	assert.Equal(t, "invoice.docx", got.SourceFilename)
	assert.Equal(t, []byte("PK\x03\x04"), got.Source)
	assert.True(t, got.InputSchema["client"].Required)
}

func TestTemplates_Create_MissingSource(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &templateServiceMock{}, &documentServiceMock{})

	body, ct := multipartBody(t, map[string]string{"title": "Invoice"}, "", nil)
	rec := serveMultipart(h, "/api/templates", body, ct)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "source", resp.Fields[0].Field)
}

func TestTemplates_Create_InvalidSchema(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &templateServiceMock{}, &documentServiceMock{})

	body, ct := multipartBody(t, map[string]string{"title": "Invoice", "schema": "{"}, "a.docx", []byte("x"))
	rec := serveMultipart(h, "/api/templates", body, ct)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "schema", decodeBody[errorResponse](t, rec).Fields[0].Field)
}

func TestTemplates_Create_NotAdmin(t *testing.T) {
	t.Parallel()

	tpl := &templateServiceMock{
		CreateTemplateFunc: func(context.Context, template.CreateTemplateInput) (*template.CreateResult, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := newTestRouter(t, tpl, &documentServiceMock{})

	body, ct := multipartBody(t, map[string]string{"title": "Invoice"}, "a.docx", []byte("x"))
	rec := serveMultipart(h, "/api/templates", body, ct)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplates_CreateVersion_Activate(t *testing.T) {
	t.Parallel()

	templateID := uuid.New()
	tpl := &templateServiceMock{
		CreateVersionFunc: func(_ context.Context, input template.CreateVersionInput) (*template.CreateResult, error) {
			assert.Equal(t, templateID, input.TemplateID)
			assert.True(t, input.Activate)
			assert.Equal(t, "new footer", input.ChangeLog)
			return &template.CreateResult{
				Template: domain.Template{ID: templateID},
				Version:  domain.TemplateVersion{TemplateID: templateID, VersionNumber: 2, IsActive: true},
			}, nil
		},
	}
	h := newTestRouter(t, tpl, &documentServiceMock{})

	body, ct := multipartBody(t, map[string]string{"activate": "true", "change_log": "new footer"}, "v2.docx", []byte("x"))
	rec := serveMultipart(h, "/api/templates/"+templateID.String()+"/versions", body, ct)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, decodeBody[createTemplateResponse](t, rec).Version.VersionNumber)
}

func TestTemplates_CreateVersion_BadActivateFlag(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &templateServiceMock{}, &documentServiceMock{})

	body, ct := multipartBody(t, map[string]string{"activate": "maybe"}, "v2.docx", []byte("x"))
	rec := serveMultipart(h, "/api/templates/"+uuid.NewString()+"/versions", body, ct)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "activate", decodeBody[errorResponse](t, rec).Fields[0].Field)
}

func TestTemplates_Activate(t *testing.T) {
	t.Parallel()

	templateID := uuid.New()
	tpl := &templateServiceMock{
		ActivateVersionFunc: func(_ context.Context, id uuid.UUID, n int) (domain.TemplateVersion, error) {
			assert.Equal(t, templateID, id)
			return domain.TemplateVersion{TemplateID: id, VersionNumber: n, IsActive: true}, nil
		},
	}
	h := newTestRouter(t, tpl, &documentServiceMock{})

	rec := serve(h, http.MethodPost, "/api/templates/"+templateID.String()+"/versions/3/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[versionResponse](t, rec)
	assert.Equal(t, 3, resp.VersionNumber)
	assert.True(t, resp.IsActive)

	bad := serve(h, http.MethodPost, "/api/templates/"+templateID.String()+"/versions/three/activate", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestTemplates_GetDetail(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tpl := &templateServiceMock{
		GetTemplateFunc: func(context.Context, uuid.UUID) (domain.Template, error) {
			return domain.Template{
				ID:    id,
				Title: "Invoice",
				Versions: []domain.TemplateVersion{
					{VersionNumber: 1},
					{VersionNumber: 2, IsActive: true},
				},
			}, nil
		},
	}
	h := newTestRouter(t, tpl, &documentServiceMock{})

	rec := serve(h, http.MethodGet, "/api/templates/"+id.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[templateDetailResponse](t, rec)
	require.Len(t, resp.Versions, 2)
	require.NotNil(t, resp.CurrentVersion)
	assert.Equal(t, 2, *resp.CurrentVersion)
}

func TestTemplates_List(t *testing.T) {
	t.Parallel()

	tpl := &templateServiceMock{
		ListTemplatesFunc: func(_ context.Context, input template.ListTemplatesInput) (*template.ListResult, error) {
			require.NotNil(t, input.Search)
			assert.Equal(t, "invoice", *input.Search)
			assert.Nil(t, input.Category)
			return &template.ListResult{Templates: []domain.Template{{ID: uuid.New(), Title: "Invoice"}}, Total: 1}, nil
		},
	}
	h := newTestRouter(t, tpl, &documentServiceMock{})

	rec := serve(h, http.MethodGet, "/api/templates?search=invoice", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[templateListResponse](t, rec)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Invoice", resp.Templates[0].Title)
}

func TestTemplates_Schema(t *testing.T) {
	t.Parallel()

	tpl := &templateServiceMock{
		GetSchemaFunc: func(context.Context, uuid.UUID) (domain.InputSchema, error) {
			return domain.InputSchema{"amount": {Type: domain.FieldTypeNumber, Required: true}}, nil
		},
	}
	h := newTestRouter(t, tpl, &documentServiceMock{})

	rec := serve(h, http.MethodGet, "/api/templates/"+uuid.NewString()+"/schema", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[domain.InputSchema](t, rec)
	assert.Equal(t, domain.FieldTypeNumber, resp["amount"].Type)
}

func TestTemplates_Forms(t *testing.T) {
	t.Parallel()

	versionID := uuid.New()
	tpl := &templateServiceMock{
		GetFormsFunc: func(_ context.Context, id uuid.UUID) ([]domain.Form, error) {
			assert.Equal(t, versionID, id)
			return []domain.Form{{ID: uuid.New(), TemplateVersionID: id, Title: "Invoice"}}, nil
		},
	}
	h := newTestRouter(t, tpl, &documentServiceMock{})

	rec := serve(h, http.MethodGet, "/api/versions/"+versionID.String()+"/forms", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[[]formResponse](t, rec)
	require.Len(t, resp, 1)
	assert.Empty(t, resp[0].Questions)
}

func TestTemplates_UpdateQuestion(t *testing.T) {
	t.Parallel()

	questionID := uuid.New()
	tpl := &templateServiceMock{
		UpdateQuestionFunc: func(_ context.Context, input template.UpdateQuestionInput) (domain.Question, error) {
			assert.Equal(t, questionID, input.QuestionID)
			require.NotNil(t, input.Type)
			assert.Equal(t, domain.FieldTypeSelect, *input.Type)
			assert.Equal(t, []string{"A", "B"}, input.Choices)
			return domain.Question{ID: questionID, Variable: "plan", Type: *input.Type, Choices: input.Choices}, nil
		},
	}
	h := newTestRouter(t, tpl, &documentServiceMock{})

	rec := serve(h, http.MethodPatch, "/api/questions/"+questionID.String(), strings.NewReader(`{"type":"select","choices":["A","B"]}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "select", decodeBody[questionResponse](t, rec).Type)
}

// ---------------------------------------------------------------------------
// Router
// ---------------------------------------------------------------------------

func TestRouter_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &templateServiceMock{}, &documentServiceMock{}, func(d *RouterDeps) {
		d.MetricsPath = "/metrics"
		d.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("docgen_jobs_total 1\n"))
		})
	})

	rec := serve(h, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docgen_jobs_total")
}

func TestRouter_MetricsDisabled(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &templateServiceMock{}, &documentServiceMock{})

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/metrics", nil).Code)
}

func TestRouter_HealthRoutes(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, &templateServiceMock{}, &documentServiceMock{})

	for _, path := range []string{"/live", "/ready", "/health"} {
		assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, path, nil).Code, path)
	}
}

func TestRouter_PanicUsesErrorEnvelope(t *testing.T) {
	t.Parallel()

	docs := &documentServiceMock{
		StatusFunc: func(context.Context, uuid.UUID) (*document.StatusResult, error) {
			panic("nil template version")
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs)

	rec := serve(h, http.MethodGet, "/api/documents/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "internal server error", decodeBody[errorResponse](t, rec).Error)
}

func TestRouter_CORSExposesDownloadFilename(t *testing.T) {
	t.Parallel()

	docs := &documentServiceMock{
		DownloadFunc: func(context.Context, uuid.UUID) (*document.DownloadResult, error) {
			return &document.DownloadResult{
				Data:        []byte("PK"),
				Filename:    "Invoice_20260101_120000.docx",
				ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			}, nil
		},
	}
	h := newTestRouter(t, &templateServiceMock{}, docs, func(d *RouterDeps) {
		d.CORS = config.CORSConfig{AllowedOrigins: "https://forms.example.com", ExposedHeaders: "Content-Disposition"}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+uuid.NewString()+"/download", nil)
	req.Header.Set("Origin", "https://forms.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://forms.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Disposition", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, `attachment; filename="Invoice_20260101_120000.docx"`, rec.Header().Get("Content-Disposition"))
}
