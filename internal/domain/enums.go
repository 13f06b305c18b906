package domain

import "strings"

// DocumentStatus is the lifecycle state of a generation job.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "PENDING"
	DocumentStatusProcessing DocumentStatus = "PROCESSING"
	DocumentStatusCompleted  DocumentStatus = "COMPLETED"
	DocumentStatusFailed     DocumentStatus = "FAILED"
)

func (s DocumentStatus) String() string { return string(s) }

func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessing, DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the current attempt has finished.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusCompleted || s == DocumentStatusFailed
}

// OutputFormat is the artifact format requested for a document.
type OutputFormat string

const (
	OutputFormatDOCX OutputFormat = "DOCX"
	OutputFormatPDF  OutputFormat = "PDF"
)

func (f OutputFormat) String() string { return string(f) }

func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatDOCX, OutputFormatPDF:
		return true
	}
	return false
}

// Extension returns the file extension without the leading dot.
func (f OutputFormat) Extension() string {
	return strings.ToLower(string(f))
}

// ContentType returns the MIME type served on download.
func (f OutputFormat) ContentType() string {
	if f == OutputFormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// ParseOutputFormat accepts "pdf", "docx" and their upper-case forms.
// An empty string yields DOCX.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return OutputFormatDOCX, true
	}
	f := OutputFormat(s)
	return f, f.IsValid()
}

// FieldType is the suggested input type of a template variable.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeDate   FieldType = "date"
	FieldTypeNumber FieldType = "number"
	FieldTypeEmail  FieldType = "email"
	FieldTypeSelect FieldType = "select"
)

func (t FieldType) String() string { return string(t) }

func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeDate, FieldTypeNumber, FieldTypeEmail, FieldTypeSelect:
		return true
	}
	return false
}

// AuditAction identifies the action recorded in a document audit entry.
type AuditAction string

const (
	AuditActionGenerate   AuditAction = "GENERATE"
	AuditActionDownloaded AuditAction = "DOWNLOADED"
	AuditActionRetry      AuditAction = "RETRY"
	AuditActionDeleted    AuditAction = "DELETED"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionGenerate, AuditActionDownloaded, AuditActionRetry, AuditActionDeleted:
		return true
	}
	return false
}

// UserRole is the role carried in access tokens.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsAdmin() bool { return r == UserRoleAdmin }
