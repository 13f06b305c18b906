package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is an immutable record of an action taken against a document.
// DocumentID is kept after the document itself is deleted.
type AuditEntry struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	ActorID    *uuid.UUID
	Action     AuditAction
	IP         *string
	Details    map[string]any
	CreatedAt  time.Time
}
