package template

import "github.com/GraceHermine/GenerateurDocument/internal/domain"

// CreateResult is returned by CreateTemplate and CreateVersion.
type CreateResult struct {
	Template domain.Template
	Version  domain.TemplateVersion
	Form     domain.Form
}

// ListResult is a page of templates.
type ListResult struct {
	Templates []domain.Template
	Total     int
}
