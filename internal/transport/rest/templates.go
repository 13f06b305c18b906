package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/service/template"
)

type templateService interface {
	CreateTemplate(ctx context.Context, input template.CreateTemplateInput) (*template.CreateResult, error)
	CreateVersion(ctx context.Context, input template.CreateVersionInput) (*template.CreateResult, error)
	ActivateVersion(ctx context.Context, templateID uuid.UUID, versionNumber int) (domain.TemplateVersion, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (domain.Template, error)
	ListTemplates(ctx context.Context, input template.ListTemplatesInput) (*template.ListResult, error)
	GetSchema(ctx context.Context, templateID uuid.UUID) (domain.InputSchema, error)
	GetForms(ctx context.Context, versionID uuid.UUID) ([]domain.Form, error)
	UpdateQuestion(ctx context.Context, input template.UpdateQuestionInput) (domain.Question, error)
}

// TemplateHandler serves template management endpoints.
type TemplateHandler struct {
	templates      templateService
	maxUploadBytes int64
	log            *slog.Logger
}

// NewTemplateHandler creates a TemplateHandler. Uploads larger than
// maxUploadBytes are rejected.
func NewTemplateHandler(templates templateService, maxUploadBytes int64, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templates:      templates,
		maxUploadBytes: maxUploadBytes,
		log:            logger.With("handler", "template"),
	}
}

// List handles GET /api/templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.templates.ListTemplates(r.Context(), template.ListTemplatesInput{
		Search:   queryString(r, "search"),
		Category: queryString(r, "category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := templateListResponse{
		Templates: make([]templateListItem, len(result.Templates)),
		Total:     result.Total,
	}
	for i, t := range result.Templates {
		resp.Templates[i] = toTemplateListItem(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/templates (multipart/form-data).
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	upload, err := h.readUpload(w, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.templates.CreateTemplate(r.Context(), template.CreateTemplateInput{
		Title:          r.FormValue("title"),
		Description:    r.FormValue("description"),
		Category:       r.FormValue("category"),
		SourceFilename: upload.filename,
		Source:         upload.source,
		InputSchema:    upload.schema,
		ChangeLog:      r.FormValue("change_log"),
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCreateResponse(result))
}

// Get handles GET /api/templates/{id}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	tpl, err := h.templates.GetTemplate(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateDetail(tpl))
}

// Schema handles GET /api/templates/{id}/schema.
func (h *TemplateHandler) Schema(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	schema, err := h.templates.GetSchema(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	if schema == nil {
		schema = domain.InputSchema{}
	}
	writeJSON(w, http.StatusOK, schema)
}

// CreateVersion handles POST /api/templates/{id}/versions (multipart/form-data).
func (h *TemplateHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	upload, err := h.readUpload(w, r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	activate := false
	if v := r.FormValue("activate"); v != "" {
		activate, err = strconv.ParseBool(v)
		if err != nil {
			handleError(h.log, w, r, domain.NewValidationError("activate", "must be a boolean"))
			return
		}
	}

	result, err := h.templates.CreateVersion(r.Context(), template.CreateVersionInput{
		TemplateID:     id,
		SourceFilename: upload.filename,
		Source:         upload.source,
		InputSchema:    upload.schema,
		ChangeLog:      r.FormValue("change_log"),
		Activate:       activate,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCreateResponse(result))
}

// Activate handles POST /api/templates/{id}/versions/{number}/activate.
func (h *TemplateHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	number, err := intParam(r, "number")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	version, err := h.templates.ActivateVersion(r.Context(), id, number)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVersion(version))
}

// Forms handles GET /api/versions/{id}/forms.
func (h *TemplateHandler) Forms(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	forms, err := h.templates.GetForms(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]formResponse, len(forms))
	for i, f := range forms {
		resp[i] = toForm(f)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateQuestion handles PATCH /api/questions/{id}.
func (h *TemplateHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req updateQuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	input := template.UpdateQuestionInput{
		QuestionID: id,
		Label:      req.Label,
		Required:   req.Required,
		Choices:    req.Choices,
	}
	if req.Type != nil {
		ft := domain.FieldType(*req.Type)
		input.Type = &ft
	}

	q, err := h.templates.UpdateQuestion(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuestion(q))
}

type upload struct {
	filename string
	source   []byte
	schema   domain.InputSchema
}

// readUpload parses the multipart body: the "source" file part and an
// optional JSON "schema" field.
func (h *TemplateHandler) readUpload(w http.ResponseWriter, r *http.Request) (upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return upload{}, domain.NewValidationError("source", fmt.Sprintf("max %d bytes", tooLarge.Limit))
		}
		return upload{}, domain.NewValidationError("body", "invalid multipart form")
	}

	file, header, err := r.FormFile("source")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return upload{}, domain.NewValidationError("source", "required")
		}
		return upload{}, fmt.Errorf("read source part: %w", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return upload{}, fmt.Errorf("read source: %w", err)
	}

	var schema domain.InputSchema
	if raw := r.FormValue("schema"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &schema); err != nil {
			return upload{}, domain.NewValidationError("schema", "invalid JSON")
		}
	}

	return upload{filename: header.Filename, source: data, schema: schema}, nil
}

func toCreateResponse(result *template.CreateResult) createTemplateResponse {
	return createTemplateResponse{
		TemplateID: result.Template.ID,
		Version:    toVersion(result.Version),
		Form:       toForm(result.Form),
	}
}
