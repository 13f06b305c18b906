package document

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// GenerateResult is returned by Generate.
type GenerateResult struct {
	Document domain.Document
}

// StatusResult describes the current state of a document.
// DownloadURL is set only for COMPLETED documents.
type StatusResult struct {
	Document    domain.Document
	DownloadURL string
}

// DownloadResult carries the artifact bytes of a completed document.
type DownloadResult struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ListResult is a page of documents.
type ListResult struct {
	Documents []domain.Document
	Total     int
}

// DownloadPath returns the API path serving the artifact of a document.
func DownloadPath(id uuid.UUID) string {
	return fmt.Sprintf("/api/documents/%s/download", id)
}

func statusResult(d domain.Document) *StatusResult {
	r := &StatusResult{Document: d}
	if d.HasArtifact() {
		r.DownloadURL = DownloadPath(d.ID)
	}
	return r
}
