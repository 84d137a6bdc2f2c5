package editor

import "haven/internal/models"

// Selection addresses a range of text within a single paragraph block. Start
// and End are rune offsets into the paragraph's text; Start == End is a caret.
type Selection struct {
	Block int
	Start int
	End   int
}

// IsCaret reports whether the selection is collapsed to a single position.
func (s Selection) IsCaret() bool { return s.Start == s.End }

// Select moves the editor's selection. The block must exist and the range must
// lie within it; for non-paragraph blocks only a collapsed selection at offset
// zero is valid.
func (e *Editor) Select(block, start, end int) error {
	if block < 0 || block >= len(e.doc.Blocks) {
		return models.NewValidationError("selection block out of range")
	}
	if start > end || start < 0 {
		return models.NewValidationError("invalid selection range")
	}
	p, ok := e.doc.Blocks[block].(*Paragraph)
	if !ok {
		if start != 0 || end != 0 {
			return models.NewValidationError("cannot select inside a non-text block")
		}
		e.sel = Selection{Block: block}
		return nil
	}
	if end > p.Len() {
		return models.NewValidationError("selection extends past end of block")
	}
	e.sel = Selection{Block: block, Start: start, End: end}
	return nil
}

// splitSpan splits s at rune offset off, returning the two halves. Attributes
// are copied to both.
func splitSpan(s Span, off int) (Span, Span) {
	runes := []rune(s.Text)
	left, right := s, s
	left.Text = string(runes[:off])
	right.Text = string(runes[off:])
	return left, right
}

// splitAt ensures a span boundary exists at rune offset off and returns the
// index of the first span starting at that offset.
func splitAt(spans []Span, off int) ([]Span, int) {
	pos := 0
	for i, s := range spans {
		n := len([]rune(s.Text))
		if off == pos {
			return spans, i
		}
		if off < pos+n {
			left, right := splitSpan(s, off-pos)
			out := make([]Span, 0, len(spans)+1)
			out = append(out, spans[:i]...)
			out = append(out, left, right)
			out = append(out, spans[i+1:]...)
			return out, i + 1
		}
		pos += n
	}
	return spans, len(spans)
}

// applyToRange rewrites the spans covering [start, end) through fn and merges
// adjacent spans that end up with identical attributes.
func applyToRange(p *Paragraph, start, end int, fn func(*Span)) {
	spans, i := splitAt(p.Spans, start)
	spans, j := splitAt(spans, end)
	for k := i; k < j; k++ {
		fn(&spans[k])
	}
	p.Spans = mergeSpans(spans)
}

// rangeSpans returns copies of the spans covering [start, end).
func rangeSpans(p *Paragraph, start, end int) []Span {
	spans, i := splitAt(p.Spans, start)
	spans, j := splitAt(spans, end)
	out := make([]Span, j-i)
	copy(out, spans[i:j])
	return out
}

func sameAttrs(a, b Span) bool {
	return a.Marks == b.Marks && a.Link == b.Link && a.Color == b.Color && a.Background == b.Background
}

func mergeSpans(spans []Span) []Span {
	out := spans[:0]
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		if len(out) > 0 && sameAttrs(out[len(out)-1], s) {
			out[len(out)-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}
