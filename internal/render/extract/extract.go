// Package extract discovers placeholder variables in .docx templates and
// suggests a field type for each of them.
package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/GraceHermine/GenerateurDocument/internal/docx"
	"github.com/GraceHermine/GenerateurDocument/internal/domain"
)

// placeholderRe matches a single-brace token. A double-brace token such as
// {{name}} yields its inner label once.
var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// Variable is one discovered placeholder.
type Variable struct {
	Label string
	Type  domain.FieldType
}

// Variables returns the placeholders of doc, unique by label, in order of
// first appearance across body, tables, headers and footers.
func Variables(doc *docx.Document) []Variable {
	seen := make(map[string]struct{})
	var out []Variable
	for _, p := range doc.Paragraphs() {
		for _, m := range placeholderRe.FindAllStringSubmatch(p.Text(), -1) {
			label := m[1]
			if strings.TrimSpace(label) == "" {
				continue
			}
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			out = append(out, Variable{Label: label, Type: InferType(label)})
		}
	}
	return out
}

// FromBytes opens a template and extracts its variables. An unreadable
// package yields an empty list; the failure is only logged.
func FromBytes(data []byte, log *slog.Logger) []Variable {
	doc, err := docx.Open(data)
	if err != nil {
		log.Warn("variable extraction skipped", slog.String("error", err.Error()))
		return nil
	}
	return Variables(doc)
}
