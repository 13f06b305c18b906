package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/service/document"
)

type documentService interface {
	Generate(ctx context.Context, input document.GenerateInput) (*document.GenerateResult, error)
	Status(ctx context.Context, id uuid.UUID) (*document.StatusResult, error)
	Download(ctx context.Context, id uuid.UUID) (*document.DownloadResult, error)
	Retry(ctx context.Context, id uuid.UUID) (*document.StatusResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, input document.ListInput) (*document.ListResult, error)
	History(ctx context.Context, id uuid.UUID) ([]domain.AuditEntry, error)
}

// DocumentHandler serves document generation endpoints.
type DocumentHandler struct {
	documents documentService
	log       *slog.Logger
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(documents documentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		log:       logger.With("handler", "document"),
	}
}

// Generate handles POST /api/documents. The document is returned with 201
// whether it was produced inline or queued.
func (h *DocumentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.documents.Generate(r.Context(), req.toInput())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var url string
	if result.Document.HasArtifact() {
		url = document.DownloadPath(result.Document.ID)
	}
	writeJSON(w, http.StatusCreated, toDocument(result.Document, url))
}

// List handles GET /api/documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
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
	templateID, err := queryUUID(r, "template_id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	input := document.ListInput{TemplateID: templateID, Limit: limit, Offset: offset}
	if s := queryString(r, "status"); s != nil {
		status := domain.DocumentStatus(strings.ToUpper(*s))
		input.Status = &status
	}

	result, err := h.documents.List(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := documentListResponse{
		Documents: make([]documentListItem, len(result.Documents)),
		Total:     result.Total,
	}
	for i, d := range result.Documents {
		resp.Documents[i] = toDocumentListItem(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /api/documents/{id}.
func (h *DocumentHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.documents.Status(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocument(result.Document, result.DownloadURL))
}

// Download handles GET /api/documents/{id}/download.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.documents.Download(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.log.WarnContext(r.Context(), "write download", slog.String("error", err.Error()))
	}
}

// Retry handles POST /api/documents/{id}/retry.
func (h *DocumentHandler) Retry(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	result, err := h.documents.Retry(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toDocument(result.Document, result.DownloadURL))
}

// Delete handles DELETE /api/documents/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if err := h.documents.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/documents/{id}/audit.
func (h *DocumentHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	entries, err := h.documents.History(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toAuditEntry(e)
	}
	writeJSON(w, http.StatusOK, resp)
}
