package docx

import (
	"encoding/xml"
	"strings"
)

// Block is a body-level element: *Paragraph or *Table.
type Block interface {
	block()
}

// Paragraph is a w:p element. Runs nested in hyperlinks, smart tags or
// content controls belong to the enclosing paragraph.
type Paragraph struct {
	Runs []*Run
}

// Run is a w:r element holding zero or more text nodes.
type Run struct {
	Texts []*Text
}

// Table is a w:tbl element.
type Table struct {
	Rows []*Row
}

// Row is a w:tr element.
type Row struct {
	Cells []*Cell
}

// Cell is a w:tc element. Cells hold paragraphs and nested tables.
type Cell struct {
	Blocks []Block
}

func (*Paragraph) block() {}
func (*Table) block()     {}

// Text is a w:t element. start and end delimit the whole element in the
// part's raw XML so an edited node can be spliced back in place.
type Text struct {
	value  string
	prefix string
	start  int
	end    int
	dirty  bool
}

// Value returns the current text of the node.
func (t *Text) Value() string { return t.value }

// Set replaces the text of the node.
func (t *Text) Set(v string) {
	if v == t.value {
		return
	}
	t.value = v
	t.dirty = true
}

func (t *Text) element() string {
	name := "t"
	if t.prefix != "" {
		name = t.prefix + ":t"
	}
	if t.value == "" {
		return "<" + name + "/>"
	}
	var b strings.Builder
	b.WriteString("<" + name + ` xml:space="preserve">`)
	_ = xml.EscapeText(&b, []byte(t.value))
	b.WriteString("</" + name + ">")
	return b.String()
}

// Text returns the run's concatenated text.
func (r *Run) Text() string {
	var b strings.Builder
	for _, t := range r.Texts {
		b.WriteString(t.value)
	}
	return b.String()
}

// Text returns the visible text of the paragraph across all runs.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Texts {
			b.WriteString(t.value)
		}
	}
	return b.String()
}

// Texts returns every text node of the paragraph in order.
func (p *Paragraph) Texts() []*Text {
	var out []*Text
	for _, r := range p.Runs {
		out = append(out, r.Texts...)
	}
	return out
}

// SetText writes s into the first text node and blanks every other node.
// Character formatting of the first run applies to the whole new text.
// It returns false when the paragraph has no text node to write into.
func (p *Paragraph) SetText(s string) bool {
	texts := p.Texts()
	if len(texts) == 0 {
		return false
	}
	texts[0].Set(s)
	for _, t := range texts[1:] {
		t.Set("")
	}
	return true
}

// walkParagraphs visits every paragraph in blocks, descending into tables.
func walkParagraphs(blocks []Block, fn func(*Paragraph)) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *Paragraph:
			fn(v)
		case *Table:
			for _, row := range v.Rows {
				for _, cell := range row.Cells {
					walkParagraphs(cell.Blocks, fn)
				}
			}
		}
	}
}
