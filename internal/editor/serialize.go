package editor

import (
	"fmt"
	"html"
	"strings"
)

// Inline style fragments matching the site's published article styling.
const (
	linkStyle      = "color: #8b5cf6; text-decoration: underline; font-weight: 500;"
	tableStyle     = "border-collapse: collapse; width: 100%; margin: 16px 0;"
	tableHeadStyle = "border: 1px solid #d1d5db; padding: 8px 12px; background-color: #f8f9fa; font-weight: 600; text-align: left;"
	tableCellStyle = "border: 1px solid #d1d5db; padding: 8px 12px; min-width: 100px;"
	ruleStyle      = "margin: 20px 0; border: none; border-top: 2px solid #e5e7eb;"
	imageStyle     = "max-width: 100%; height: auto; border-radius: 8px;"
	imageFallback  = "display: none; padding: 20px; background: #f3f4f6; border-radius: 8px; color: #6b7280;"
)

// HTML serializes the document to the HTML form stored on a post.
func (d *Document) HTML() string {
	var b strings.Builder
	for _, blk := range d.Blocks {
		switch t := blk.(type) {
		case *Paragraph:
			writeParagraph(&b, t)
		case *List:
			writeList(&b, t)
		case *Table:
			writeTable(&b, t)
		case *Rule:
			fmt.Fprintf(&b, `<hr style=%q>`, ruleStyle)
		case *Image:
			writeImage(&b, t)
		}
	}
	return b.String()
}

func writeParagraph(b *strings.Builder, p *Paragraph) {
	if p.Align == AlignDefault {
		b.WriteString("<p>")
	} else {
		fmt.Fprintf(b, `<p style="text-align: %s;">`, p.Align)
	}
	if len(p.Spans) == 0 {
		b.WriteString("<br>")
	}
	for _, s := range p.Spans {
		b.WriteString(renderSpan(s))
	}
	b.WriteString("</p>")
}

func writeList(b *strings.Builder, l *List) {
	tag := "ul"
	if l.Ordered {
		tag = "ol"
	}
	fmt.Fprintf(b, "<%s>", tag)
	for _, item := range l.Items {
		b.WriteString("<li>")
		for _, s := range item {
			b.WriteString(renderSpan(s))
		}
		b.WriteString("</li>")
	}
	fmt.Fprintf(b, "</%s>", tag)
}

func writeTable(b *strings.Builder, t *Table) {
	fmt.Fprintf(b, `<table style=%q><thead><tr>`, tableStyle)
	for c := 0; c < t.Cols; c++ {
		fmt.Fprintf(b, `<th style=%q>Header %d</th>`, tableHeadStyle, c+1)
	}
	b.WriteString("</tr></thead><tbody>")
	for r := 0; r < t.Rows; r++ {
		b.WriteString("<tr>")
		for c := 0; c < t.Cols; c++ {
			fmt.Fprintf(b, `<td style=%q><br></td>`, tableCellStyle)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}

func writeImage(b *strings.Builder, img *Image) {
	b.WriteString(`<div class="image-container" style="margin: 16px 0; text-align: center;">`)
	fmt.Fprintf(b,
		`<img src="%s" alt="%s" style=%q onerror="this.style.display='none'; this.nextElementSibling.style.display='block';">`,
		html.EscapeString(img.URL), html.EscapeString(img.Alt), imageStyle)
	fmt.Fprintf(b, `<div style=%q>Image unavailable</div>`, imageFallback)
	b.WriteString("</div>")
}

// renderSpan wraps the span's escaped text in its mark, color, and link tags,
// innermost to outermost. Soft breaks become <br>.
func renderSpan(s Span) string {
	out := html.EscapeString(s.Text)
	out = strings.ReplaceAll(out, "\n", "<br>")
	if s.Marks.Has(MarkStrike) {
		out = "<s>" + out + "</s>"
	}
	if s.Marks.Has(MarkUnderline) {
		out = "<u>" + out + "</u>"
	}
	if s.Marks.Has(MarkItalic) {
		out = "<em>" + out + "</em>"
	}
	if s.Marks.Has(MarkBold) {
		out = "<strong>" + out + "</strong>"
	}
	if s.Color != "" || s.Background != "" {
		var style strings.Builder
		if s.Color != "" {
			fmt.Fprintf(&style, "color: %s;", s.Color)
		}
		if s.Background != "" {
			if style.Len() > 0 {
				style.WriteString(" ")
			}
			fmt.Fprintf(&style, "background-color: %s;", s.Background)
		}
		out = fmt.Sprintf(`<span style="%s">%s</span>`, html.EscapeString(style.String()), out)
	}
	if s.Link != "" {
		out = fmt.Sprintf(`<a href="%s" style=%q target="_blank" rel="noopener noreferrer">%s</a>`,
			html.EscapeString(s.Link), linkStyle, out)
	}
	return out
}
