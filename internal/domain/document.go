package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is one generation job. It references a TemplateVersion, never
// the mutable Template, so later template edits leave it untouched.
type Document struct {
	ID                uuid.UUID
	TemplateVersionID uuid.UUID
	OwnerID           *uuid.UUID
	Format            OutputFormat
	InputData         map[string]any
	Answers           []Answer
	Status            DocumentStatus
	Attempt           int
	OutputKey         *string
	Filename          *string
	ContentType       *string
	SizeBytes         int64
	ErrorLog          *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
}

// AccessibleBy reports whether the caller may see the document.
// Documents without an owner are reachable by anyone holding their ID.
func (d *Document) AccessibleBy(userID uuid.UUID, authenticated bool) bool {
	if d.OwnerID == nil {
		return true
	}
	return authenticated && *d.OwnerID == userID
}

// HasArtifact reports whether a completed artifact is recorded.
func (d *Document) HasArtifact() bool {
	return d.Status == DocumentStatusCompleted && d.OutputKey != nil && d.CompletedAt != nil
}

// Artifact is the stored output of a completed document.
type Artifact struct {
	Key         string
	Filename    string
	ContentType string
	Size        int64
}

// transitions lists every allowed status change. COMPLETED has no exits;
// FAILED leaves only through an explicit retry.
var transitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusPending:    {DocumentStatusProcessing, DocumentStatusCompleted, DocumentStatusFailed},
	DocumentStatusProcessing: {DocumentStatusCompleted, DocumentStatusFailed},
	DocumentStatusFailed:     {DocumentStatusPending},
}

// CanTransition reports whether a document may move from one status to another.
func CanTransition(from, to DocumentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// EnsureTransition returns a *TransitionError when the move is not allowed.
func EnsureTransition(from, to DocumentStatus) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// InitialStatus returns the creation status for the given execution mode.
func InitialStatus(synchronous bool) DocumentStatus {
	if synchronous {
		return DocumentStatusProcessing
	}
	return DocumentStatusPending
}
