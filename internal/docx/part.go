package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const mainNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// Part is one parsed XML part of the package (body, header, footer, notes).
type Part struct {
	Name   string
	Blocks []Block

	raw   []byte
	texts []*Text
}

// Paragraphs returns every paragraph of the part in document order,
// including paragraphs inside table cells and text boxes.
func (p *Part) Paragraphs() []*Paragraph {
	var out []*Paragraph
	walkParagraphs(p.Blocks, func(para *Paragraph) {
		out = append(out, para)
	})
	return out
}

func (p *Part) dirty() bool {
	for _, t := range p.texts {
		if t.dirty {
			return true
		}
	}
	return false
}

// render splices edited text nodes into the original XML.
func (p *Part) render() []byte {
	var b bytes.Buffer
	b.Grow(len(p.raw))
	pos := 0
	for _, t := range p.texts {
		if !t.dirty {
			continue
		}
		b.Write(p.raw[pos:t.start])
		b.WriteString(t.element())
		pos = t.end
	}
	b.Write(p.raw[pos:])
	return b.Bytes()
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

type containerKind int

const (
	containerBody containerKind = iota
	containerCell
	containerTextBox
)

type container struct {
	kind   containerKind
	blocks *[]Block
}

type paragraphFrame struct {
	para *Paragraph
	run  *Run
}

type partBuilder struct {
	part       *Part
	prefix     string
	containers []container
	paragraphs []*paragraphFrame
	tables     []*Table
}

func parsePart(name string, raw []byte) (*Part, error) {
	part := &Part{Name: name, raw: raw}
	b := &partBuilder{part: part}
	b.containers = []container{{kind: containerBody, blocks: &part.Blocks}}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	resolved := false

	for {
		off := int(dec.InputOffset())
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !resolved {
				b.prefix = namespacePrefix(t)
				resolved = true
			}
			if t.Name.Space != b.prefix {
				continue
			}
			if t.Name.Local == "t" {
				if err := b.readText(dec, off); err != nil {
					return nil, fmt.Errorf("parse %s: %w", name, err)
				}
				continue
			}
			b.start(t.Name.Local)
		case xml.EndElement:
			if t.Name.Space != b.prefix {
				continue
			}
			b.end(t.Name.Local)
		}
	}

	return part, nil
}

// namespacePrefix returns the prefix bound to the WordprocessingML namespace
// on the root element. Parts nearly always use "w".
func namespacePrefix(root xml.StartElement) string {
	for _, a := range root.Attr {
		if a.Value != mainNamespace {
			continue
		}
		if a.Name.Space == "xmlns" {
			return a.Name.Local
		}
		if a.Name.Space == "" && a.Name.Local == "xmlns" {
			return ""
		}
	}
	return "w"
}

func (b *partBuilder) start(local string) {
	switch local {
	case "p":
		para := &Paragraph{}
		b.appendBlock(para)
		b.paragraphs = append(b.paragraphs, &paragraphFrame{para: para})
	case "r":
		if f := b.paragraph(); f != nil {
			f.run = &Run{}
			f.para.Runs = append(f.para.Runs, f.run)
		}
	case "tbl":
		tbl := &Table{}
		b.appendBlock(tbl)
		b.tables = append(b.tables, tbl)
	case "tr":
		if tbl := b.table(); tbl != nil {
			tbl.Rows = append(tbl.Rows, &Row{})
		}
	case "tc":
		tbl := b.table()
		if tbl == nil || len(tbl.Rows) == 0 {
			return
		}
		row := tbl.Rows[len(tbl.Rows)-1]
		cell := &Cell{}
		row.Cells = append(row.Cells, cell)
		b.containers = append(b.containers, container{kind: containerCell, blocks: &cell.Blocks})
	case "txbxContent":
		top := b.containers[len(b.containers)-1]
		b.containers = append(b.containers, container{kind: containerTextBox, blocks: top.blocks})
	}
}

func (b *partBuilder) end(local string) {
	switch local {
	case "p":
		if n := len(b.paragraphs); n > 0 {
			b.paragraphs = b.paragraphs[:n-1]
		}
	case "r":
		if f := b.paragraph(); f != nil {
			f.run = nil
		}
	case "tbl":
		if n := len(b.tables); n > 0 {
			b.tables = b.tables[:n-1]
		}
	case "tc":
		b.popContainer(containerCell)
	case "txbxContent":
		b.popContainer(containerTextBox)
	}
}

// readText consumes a w:t element whose start tag began at off.
func (b *partBuilder) readText(dec *xml.Decoder, off int) error {
	var sb strings.Builder
	for {
		tok, err := dec.RawToken()
		if err != nil {
			return fmt.Errorf("read text node: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if t.Name.Local != "t" || t.Name.Space != b.prefix {
				continue
			}
			b.addText(&Text{
				value:  sb.String(),
				prefix: b.prefix,
				start:  off,
				end:    int(dec.InputOffset()),
			})
			return nil
		}
	}
}

func (b *partBuilder) addText(t *Text) {
	f := b.paragraph()
	if f == nil {
		// Text outside any paragraph is not addressable.
		return
	}
	if f.run == nil {
		f.run = &Run{}
		f.para.Runs = append(f.para.Runs, f.run)
	}
	f.run.Texts = append(f.run.Texts, t)
	b.part.texts = append(b.part.texts, t)
}

func (b *partBuilder) appendBlock(blk Block) {
	top := b.containers[len(b.containers)-1]
	*top.blocks = append(*top.blocks, blk)
}

func (b *partBuilder) paragraph() *paragraphFrame {
	if n := len(b.paragraphs); n > 0 {
		return b.paragraphs[n-1]
	}
	return nil
}

func (b *partBuilder) table() *Table {
	if n := len(b.tables); n > 0 {
		return b.tables[n-1]
	}
	return nil
}

func (b *partBuilder) popContainer(kind containerKind) {
	n := len(b.containers)
	if n > 1 && b.containers[n-1].kind == kind {
		b.containers = b.containers[:n-1]
	}
}
