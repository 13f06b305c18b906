package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
	"github.com/GraceHermine/GenerateurDocument/internal/service/document"
)

// Each operation has its own request/response shape: list views carry a
// summary, detail views the nested records, create inputs only what the
// caller may set.

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

type templateListItem struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type templateListResponse struct {
	Templates []templateListItem `json:"templates"`
	Total     int                `json:"total"`
}

type templateDetailResponse struct {
	ID             uuid.UUID         `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	CreatedBy      *uuid.UUID        `json:"created_by,omitempty"`
	CurrentVersion *int              `json:"current_version"`
	Versions       []versionResponse `json:"versions"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type versionResponse struct {
	ID             uuid.UUID          `json:"id"`
	TemplateID     uuid.UUID          `json:"template_id"`
	VersionNumber  int                `json:"version_number"`
	SourceFilename string             `json:"source_filename,omitempty"`
	InputSchema    domain.InputSchema `json:"input_schema"`
	IsActive       bool               `json:"is_active"`
	ChangeLog      string             `json:"change_log,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

type createTemplateResponse struct {
	TemplateID uuid.UUID       `json:"template_id"`
	Version    versionResponse `json:"version"`
	Form       formResponse    `json:"form"`
}

type formResponse struct {
	ID                uuid.UUID          `json:"id"`
	TemplateVersionID uuid.UUID          `json:"template_version_id"`
	Title             string             `json:"title"`
	Questions         []questionResponse `json:"questions"`
}

type questionResponse struct {
	ID       uuid.UUID `json:"id"`
	Label    string    `json:"label"`
	Variable string    `json:"variable"`
	Type     string    `json:"type"`
	Required bool      `json:"required"`
	Position int       `json:"position"`
	Choices  []string  `json:"choices,omitempty"`
}

type updateQuestionRequest struct {
	Label    *string  `json:"label"`
	Type     *string  `json:"type"`
	Required *bool    `json:"required"`
	Choices  []string `json:"choices"`
}

func toTemplateListItem(t domain.Template) templateListItem {
	return templateListItem{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTemplateDetail(t domain.Template) templateDetailResponse {
	resp := templateDetailResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		CreatedBy:   t.CreatedBy,
		Versions:    make([]versionResponse, len(t.Versions)),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	for i, v := range t.Versions {
		resp.Versions[i] = toVersion(v)
	}
	if v, ok := t.CurrentVersion(); ok {
		n := v.VersionNumber
		resp.CurrentVersion = &n
	}
	return resp
}

func toVersion(v domain.TemplateVersion) versionResponse {
	schema := v.InputSchema
	if schema == nil {
		schema = domain.InputSchema{}
	}
	return versionResponse{
		ID:             v.ID,
		TemplateID:     v.TemplateID,
		VersionNumber:  v.VersionNumber,
		SourceFilename: v.SourceFilename,
		InputSchema:    schema,
		IsActive:       v.IsActive,
		ChangeLog:      v.ChangeLog,
		CreatedAt:      v.CreatedAt,
	}
}

func toForm(f domain.Form) formResponse {
	resp := formResponse{
		ID:                f.ID,
		TemplateVersionID: f.TemplateVersionID,
		Title:             f.Title,
		Questions:         make([]questionResponse, len(f.Questions)),
	}
	for i, q := range f.Questions {
		resp.Questions[i] = toQuestion(q)
	}
	return resp
}

func toQuestion(q domain.Question) questionResponse {
	return questionResponse{
		ID:       q.ID,
		Label:    q.Label,
		Variable: q.Variable,
		Type:     q.Type.String(),
		Required: q.Required,
		Position: q.Position,
		Choices:  q.Choices,
	}
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

type answerRequest struct {
	QuestionID *uuid.UUID `json:"question_id"`
	Value      any        `json:"value"`
}

type generateRequest struct {
	TemplateVersionID uuid.UUID       `json:"template_version_id"`
	Format            string          `json:"format"`
	Data              map[string]any  `json:"data"`
	Answers           []answerRequest `json:"answers"`
}

func (req generateRequest) toInput() document.GenerateInput {
	in := document.GenerateInput{
		TemplateVersionID: req.TemplateVersionID,
		Format:            req.Format,
		Data:              req.Data,
	}
	if req.Answers != nil {
		in.Answers = make([]document.AnswerInput, len(req.Answers))
		for i, a := range req.Answers {
			in.Answers[i] = document.AnswerInput{QuestionID: a.QuestionID, Value: a.Value}
		}
	}
	return in
}

type documentResponse struct {
	ID                uuid.UUID  `json:"id"`
	TemplateVersionID uuid.UUID  `json:"template_version_id"`
	Format            string     `json:"format"`
	Status            string     `json:"status"`
	Attempt           int        `json:"attempt"`
	ErrorLog          *string    `json:"error_log"`
	Filename          *string    `json:"filename,omitempty"`
	SizeBytes         int64      `json:"size_bytes,omitempty"`
	DownloadURL       string     `json:"download_url,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CompletedAt       *time.Time `json:"completed_at"`
}

type documentListItem struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Format    string    `json:"format"`
	Filename  *string   `json:"filename,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type documentListResponse struct {
	Documents []documentListItem `json:"documents"`
	Total     int                `json:"total"`
}

type auditEntryResponse struct {
	ID        uuid.UUID      `json:"id"`
	Action    string         `json:"action"`
	ActorID   *uuid.UUID     `json:"actor_id,omitempty"`
	IP        *string        `json:"ip,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func toDocument(d domain.Document, downloadURL string) documentResponse {
	return documentResponse{
		ID:                d.ID,
		TemplateVersionID: d.TemplateVersionID,
		Format:            d.Format.String(),
		Status:            d.Status.String(),
		Attempt:           d.Attempt,
		ErrorLog:          d.ErrorLog,
		Filename:          d.Filename,
		SizeBytes:         d.SizeBytes,
		DownloadURL:       downloadURL,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
		CompletedAt:       d.CompletedAt,
	}
}

func toDocumentListItem(d domain.Document) documentListItem {
	return documentListItem{
		ID:        d.ID,
		Status:    d.Status.String(),
		Format:    d.Format.String(),
		Filename:  d.Filename,
		CreatedAt: d.CreatedAt,
	}
}

func toAuditEntry(e domain.AuditEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:        e.ID,
		Action:    e.Action.String(),
		ActorID:   e.ActorID,
		IP:        e.IP,
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
}
