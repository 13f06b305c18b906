package domain

import "github.com/google/uuid"

// Pagination bounds shared by list queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TemplateFilter contains filtering/pagination parameters for template listings.
type TemplateFilter struct {
	Search   *string
	Category *string
	Limit    int
	Offset   int
}

// DocumentFilter contains filtering/pagination parameters for document listings.
// A nil OwnerID lists documents of every owner.
type DocumentFilter struct {
	OwnerID    *uuid.UUID
	Status     *DocumentStatus
	TemplateID *uuid.UUID
	Limit      int
	Offset     int
}

// ClampLimit returns limit bounded to [1, MaxPageSize], DefaultPageSize when unset.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}
