// Package substitute replaces placeholders in a .docx document tree.
//
// Visible paragraph text is usually split over several runs, so matching
// happens on the concatenated paragraph text. A changed paragraph is
// collapsed: the new text goes into the first text node and the others are
// blanked. Styling boundaries inside a replaced span are lost; paragraphs
// without a match are left untouched.
package substitute

import (
	"strings"

	"github.com/GraceHermine/GenerateurDocument/internal/docx"
)

// Replacements is an ordered placeholder-key to value map. When several
// keys match at the same position the one registered first wins.
type Replacements struct {
	keys   []string
	values map[string]string
}

// NewReplacements returns an empty replacement set.
func NewReplacements() *Replacements {
	return &Replacements{values: make(map[string]string)}
}

// Set registers value under key. Blank keys are ignored; re-registering a
// key keeps its position and updates the value.
func (r *Replacements) Set(key, value string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value registered under key.
func (r *Replacements) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of registered keys.
func (r *Replacements) Len() int { return len(r.keys) }

// Keys returns the keys in registration order.
func (r *Replacements) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// ReplaceText replaces every placeholder of s in a single left-to-right
// scan. All {{key}} forms take precedence over {key} forms so that a
// double-brace placeholder never leaves stray braces behind. Inserted values
// are never scanned again, so running ReplaceText on its own output is a
// no-op even when a value looks like a placeholder.
func (r *Replacements) ReplaceText(s string) string {
	if !strings.Contains(s, "{") || len(r.keys) == 0 {
		return s
	}
	return r.replacer().Replace(s)
}

func (r *Replacements) replacer() *strings.Replacer {
	pairs := make([]string, 0, 4*len(r.keys))
	for _, k := range r.keys {
		pairs = append(pairs, "{{"+k+"}}", r.values[k])
	}
	for _, k := range r.keys {
		pairs = append(pairs, "{"+k+"}", r.values[k])
	}
	return strings.NewReplacer(pairs...)
}

// Apply substitutes placeholders in every paragraph of doc, including table
// cells, text boxes, headers and footers. It returns the number of
// paragraphs that changed.
func Apply(doc *docx.Document, repl *Replacements) int {
	if repl == nil || repl.Len() == 0 {
		return 0
	}
	rep := repl.replacer()
	changed := 0
	for _, p := range doc.Paragraphs() {
		text := p.Text()
		if !strings.Contains(text, "{") {
			continue
		}
		next := rep.Replace(text)
		if next == text {
			continue
		}
		if p.SetText(next) {
			changed++
		}
	}
	return changed
}
