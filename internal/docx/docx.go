// Package docx reads and rewrites WordprocessingML (.docx) packages.
//
// The package is kept as raw zip entries. Body, header, footer and note
// parts are parsed into a tree of paragraphs, tables, cells and runs whose
// text nodes can be edited. On serialization only the edited w:t elements
// are rewritten; every other byte of every entry is preserved.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// ErrInvalidPackage is returned for data that is not a readable .docx package.
var ErrInvalidPackage = errors.New("docx: invalid package")

// MainPart is the name of the body part inside the package.
const MainPart = "word/document.xml"

// Document is an opened .docx package.
type Document struct {
	entries []*entry
	parts   []*Part
}

type entry struct {
	name     string
	method   uint16
	modified time.Time
	data     []byte
	part     *Part
}

// Open parses a .docx package from memory.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	doc := &Document{}
	for _, f := range zr.File {
		content, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPackage, f.Name, err)
		}

		e := &entry{
			name:     f.Name,
			method:   f.Method,
			modified: f.Modified,
			data:     content,
		}
		if isTextPart(f.Name) {
			part, err := parsePart(f.Name, content)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
			}
			e.part = part
			doc.parts = append(doc.parts, part)
		}
		doc.entries = append(doc.entries, e)
	}

	if doc.Body() == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidPackage, MainPart)
	}

	sort.SliceStable(doc.parts, func(i, j int) bool {
		return partRank(doc.parts[i].Name) < partRank(doc.parts[j].Name)
	})

	return doc, nil
}

// Body returns the main document part.
func (d *Document) Body() *Part {
	for _, p := range d.parts {
		if p.Name == MainPart {
			return p
		}
	}
	return nil
}

// Parts returns the parsed parts: body first, then headers, footers and notes.
func (d *Document) Parts() []*Part {
	return d.parts
}

// Paragraphs returns every paragraph of every parsed part in document order.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, p := range d.parts {
		out = append(out, p.Paragraphs()...)
	}
	return out
}

// Text returns the visible text of the body, one line per paragraph.
func (d *Document) Text() string {
	body := d.Body()
	if body == nil {
		return ""
	}
	paras := body.Paragraphs()
	lines := make([]string, len(paras))
	for i, p := range paras {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n")
}

// Bytes serializes the package. Entries are written in their original order.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range d.entries {
		data := e.data
		if e.part != nil && e.part.dirty() {
			data = e.part.render()
		}

		method := e.method
		if method != zip.Store {
			method = zip.Deflate
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   method,
			Modified: e.modified,
		})
		if err != nil {
			return nil, fmt.Errorf("docx: create entry %s: %w", e.name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("docx: write entry %s: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: close package: %w", err)
	}
	return buf.Bytes(), nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func isTextPart(name string) bool {
	switch name {
	case MainPart, "word/footnotes.xml", "word/endnotes.xml":
		return true
	}
	rest, ok := strings.CutPrefix(name, "word/")
	if !ok || strings.Contains(rest, "/") || !strings.HasSuffix(rest, ".xml") {
		return false
	}
	return strings.HasPrefix(rest, "header") || strings.HasPrefix(rest, "footer")
}

func partRank(name string) string {
	switch {
	case name == MainPart:
		return "0"
	case strings.HasPrefix(name, "word/header"):
		return "1" + name
	case strings.HasPrefix(name, "word/footer"):
		return "2" + name
	default:
		return "3" + name
	}
}
