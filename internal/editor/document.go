// Package editor implements the rich content editing core: a structured
// document model mutated through typed commands and serialized to HTML only at
// the boundary. The stored HTML form of a post is produced here.
package editor

import (
	"strings"
)

// Mark is a bitmask of inline character styles.
type Mark uint8

const (
	MarkBold Mark = 1 << iota
	MarkItalic
	MarkUnderline
	MarkStrike
)

// Has reports whether all bits of m2 are set on m.
func (m Mark) Has(m2 Mark) bool { return m&m2 == m2 }

// Alignment is a block-level text alignment.
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
)

// Span is a run of text sharing one set of inline attributes. A span with a
// non-empty Link renders as an anchor. Text may contain "\n" for soft line
// breaks within a paragraph.
type Span struct {
	Text       string `json:"text"`
	Marks      Mark   `json:"marks,omitempty"`
	Link       string `json:"link,omitempty"`
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
}

// Block is one top-level element of a document.
type Block interface {
	isBlock()
}

// Paragraph is a block of styled text.
type Paragraph struct {
	Spans []Span
	Align Alignment
}

// List is an ordered or unordered list of styled items.
type List struct {
	Ordered bool
	Items   [][]Span
}

// Table is a bordered table with a generated header row and empty body cells.
type Table struct {
	Rows int
	Cols int
}

// Rule is a horizontal divider.
type Rule struct{}

// Image is an embedded, externally hosted image.
type Image struct {
	URL string
	Alt string
}

func (*Paragraph) isBlock() {}
func (*List) isBlock()      {}
func (*Table) isBlock()     {}
func (*Rule) isBlock()      {}
func (*Image) isBlock()     {}

// Document is an ordered sequence of blocks. The zero value is not usable;
// construct with NewDocument so there is always at least one paragraph.
type Document struct {
	Blocks []Block
}

// NewDocument returns a document containing a single empty paragraph.
func NewDocument() *Document {
	return &Document{Blocks: []Block{&Paragraph{}}}
}

// Text returns the paragraph's text content with soft breaks preserved.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, s := range p.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Len returns the paragraph's text length in runes.
func (p *Paragraph) Len() int {
	n := 0
	for _, s := range p.Spans {
		n += len([]rune(s.Text))
	}
	return n
}

// PlainText extracts the document's text content, block per line.
func (d *Document) PlainText() string {
	var lines []string
	for _, blk := range d.Blocks {
		switch b := blk.(type) {
		case *Paragraph:
			lines = append(lines, b.Text())
		case *List:
			for _, item := range b.Items {
				var sb strings.Builder
				for _, s := range item {
					sb.WriteString(s.Text)
				}
				lines = append(lines, sb.String())
			}
		}
	}
	return strings.Join(lines, "\n")
}

// ContainsLink reports whether any span in the document carries a hyperlink.
func (d *Document) ContainsLink() bool {
	for _, blk := range d.Blocks {
		switch b := blk.(type) {
		case *Paragraph:
			for _, s := range b.Spans {
				if s.Link != "" {
					return true
				}
			}
		case *List:
			for _, item := range b.Items {
				for _, s := range item {
					if s.Link != "" {
						return true
					}
				}
			}
		}
	}
	return false
}
