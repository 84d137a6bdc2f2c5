package editor

import (
	"haven/internal/models"
)

// CommandKind enumerates every editing operation.
type CommandKind string

const (
	CmdInsertText      CommandKind = "insert_text"
	CmdLineBreak       CommandKind = "line_break"
	CmdParagraphBreak  CommandKind = "paragraph_break"
	CmdBold            CommandKind = "bold"
	CmdItalic          CommandKind = "italic"
	CmdUnderline       CommandKind = "underline"
	CmdStrikethrough   CommandKind = "strikethrough"
	CmdAlignLeft       CommandKind = "align_left"
	CmdAlignCenter     CommandKind = "align_center"
	CmdAlignRight      CommandKind = "align_right"
	CmdBulletList      CommandKind = "bullet_list"
	CmdNumberList      CommandKind = "number_list"
	CmdInsertLink      CommandKind = "insert_link"
	CmdEditLink        CommandKind = "edit_link"
	CmdRemoveLink      CommandKind = "remove_link"
	CmdTextColor       CommandKind = "text_color"
	CmdBackgroundColor CommandKind = "background_color"
	CmdClearFormatting CommandKind = "clear_formatting"
	CmdInsertTable     CommandKind = "insert_table"
	CmdInsertRule      CommandKind = "insert_rule"
	CmdInsertImage     CommandKind = "insert_image"
)

// Command is one editing operation. Value carries the command's argument:
// text for insert_text, a URL for link and image commands, a CSS color for
// the color commands, and an "RxC" size for insert_table. Commands that need
// a Value and receive none return an InputRequest instead of mutating.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Value string      `json:"value,omitempty"`
}

// Exec applies cmd to the document at the current selection. A non-nil
// InputRequest means the command is suspended until Provide is called.
// Issuing a new command abandons any suspended one.
func (e *Editor) Exec(cmd Command) (*InputRequest, error) {
	e.pending = nil
	switch cmd.Kind {
	case CmdInsertText:
		return nil, e.insertText(cmd.Value)
	case CmdLineBreak:
		return nil, e.insertText("\n")
	case CmdParagraphBreak:
		return nil, e.paragraphBreak()
	case CmdBold:
		return nil, e.toggleMark(MarkBold)
	case CmdItalic:
		return nil, e.toggleMark(MarkItalic)
	case CmdUnderline:
		return nil, e.toggleMark(MarkUnderline)
	case CmdStrikethrough:
		return nil, e.toggleMark(MarkStrike)
	case CmdAlignLeft:
		return nil, e.setAlign(AlignLeft)
	case CmdAlignCenter:
		return nil, e.setAlign(AlignCenter)
	case CmdAlignRight:
		return nil, e.setAlign(AlignRight)
	case CmdBulletList:
		return nil, e.convertToList(false)
	case CmdNumberList:
		return nil, e.convertToList(true)
	case CmdInsertLink:
		return e.insertLink(cmd.Value)
	case CmdEditLink:
		return e.editLink(cmd.Value)
	case CmdRemoveLink:
		return nil, e.removeLink()
	case CmdTextColor:
		return e.applyColor(cmd.Value, false)
	case CmdBackgroundColor:
		return e.applyColor(cmd.Value, true)
	case CmdClearFormatting:
		return nil, e.clearFormatting()
	case CmdInsertTable:
		return e.insertTable(cmd.Value)
	case CmdInsertRule:
		e.insertBlockAfter(&Rule{})
		e.changed()
		return nil, nil
	case CmdInsertImage:
		return e.insertImage(cmd.Value)
	default:
		return nil, models.NewValidationError("unknown editor command")
	}
}

func (e *Editor) insertText(text string) error {
	p := e.curParagraph()
	if p == nil {
		return models.NewValidationError("cannot type inside a non-text block")
	}
	if !e.sel.IsCaret() {
		deleteRange(p, e.sel.Start, e.sel.End)
	}
	spans, i := splitAt(p.Spans, e.sel.Start)
	ins := Span{Text: text}
	if i > 0 {
		// New text inherits the attributes of the span before the caret.
		ins.Marks = spans[i-1].Marks
		ins.Link = spans[i-1].Link
		ins.Color = spans[i-1].Color
		ins.Background = spans[i-1].Background
	}
	out := make([]Span, 0, len(spans)+1)
	out = append(out, spans[:i]...)
	out = append(out, ins)
	out = append(out, spans[i:]...)
	p.Spans = mergeSpans(out)
	at := e.sel.Start + len([]rune(text))
	e.sel = Selection{Block: e.sel.Block, Start: at, End: at}
	e.changed()
	return nil
}

func (e *Editor) paragraphBreak() error {
	p := e.curParagraph()
	if p == nil {
		return models.NewValidationError("cannot type inside a non-text block")
	}
	if !e.sel.IsCaret() {
		deleteRange(p, e.sel.Start, e.sel.End)
	}
	spans, i := splitAt(p.Spans, e.sel.Start)
	next := &Paragraph{Align: p.Align, Spans: append([]Span(nil), spans[i:]...)}
	p.Spans = mergeSpans(append([]Span(nil), spans[:i]...))
	at := e.sel.Block + 1
	blocks := make([]Block, 0, len(e.doc.Blocks)+1)
	blocks = append(blocks, e.doc.Blocks[:at]...)
	blocks = append(blocks, next)
	blocks = append(blocks, e.doc.Blocks[at:]...)
	e.doc.Blocks = blocks
	e.sel = Selection{Block: at}
	e.changed()
	return nil
}

func (e *Editor) toggleMark(m Mark) error {
	p := e.curParagraph()
	if p == nil {
		return models.NewValidationError("cannot format a non-text block")
	}
	if e.sel.IsCaret() {
		return nil
	}
	all := true
	for _, s := range rangeSpans(p, e.sel.Start, e.sel.End) {
		if !s.Marks.Has(m) {
			all = false
			break
		}
	}
	applyToRange(p, e.sel.Start, e.sel.End, func(s *Span) {
		if all {
			s.Marks &^= m
		} else {
			s.Marks |= m
		}
	})
	e.changed()
	return nil
}

func (e *Editor) setAlign(a Alignment) error {
	p := e.curParagraph()
	if p == nil {
		return models.NewValidationError("cannot align a non-text block")
	}
	p.Align = a
	e.changed()
	return nil
}

func (e *Editor) convertToList(ordered bool) error {
	p := e.curParagraph()
	if p == nil {
		return models.NewValidationError("only a paragraph can become a list")
	}
	item := append([]Span(nil), p.Spans...)
	if len(item) == 0 {
		item = []Span{{Text: ""}}
	}
	e.doc.Blocks[e.sel.Block] = &List{Ordered: ordered, Items: [][]Span{item}}
	e.sel = Selection{Block: e.sel.Block}
	e.changed()
	return nil
}

func (e *Editor) insertLink(url string) (*InputRequest, error) {
	p := e.curParagraph()
	if p == nil || e.sel.IsCaret() {
		return nil, models.NewValidationError("select some text to create a link")
	}
	if url == "" {
		return e.requestInput(InputURL, "Link URL", "", func(v string) error {
			return e.applyLink(v)
		}), nil
	}
	return nil, e.applyLink(url)
}

func (e *Editor) applyLink(url string) error {
	p := e.curParagraph()
	if p == nil {
		return models.NewValidationError("select some text to create a link")
	}
	applyToRange(p, e.sel.Start, e.sel.End, func(s *Span) { s.Link = url })
	e.changed()
	return nil
}

// linkRunAt finds the contiguous linked text range surrounding rune offset
// off. Returns start, end, href; href is empty when off is not inside a link.
func linkRunAt(p *Paragraph, off int) (int, int, string) {
	pos := 0
	for i, s := range p.Spans {
		n := len([]rune(s.Text))
		if off >= pos && off <= pos+n && s.Link != "" {
			start, end := pos, pos+n
			for j := i - 1; j >= 0 && p.Spans[j].Link == s.Link; j-- {
				start -= len([]rune(p.Spans[j].Text))
			}
			for j := i + 1; j < len(p.Spans) && p.Spans[j].Link == s.Link; j++ {
				end += len([]rune(p.Spans[j].Text))
			}
			return start, end, s.Link
		}
		pos += n
	}
	return 0, 0, ""
}

func (e *Editor) editLink(url string) (*InputRequest, error) {
	p := e.curParagraph()
	if p == nil {
		return nil, models.NewValidationError("no link at cursor")
	}
	_, _, href := linkRunAt(p, e.sel.Start)
	if href == "" {
		// Nothing under the cursor to edit; behave like a fresh insert.
		return e.insertLink(url)
	}
	if url == "" {
		return e.requestInput(InputURL, "Link URL", href, e.retargetLink), nil
	}
	return nil, e.retargetLink(url)
}

// retargetLink rewrites the href of the link run at the cursor. The selection
// is resolved at call time, so a Select issued while an input request is
// pending moves the edit with it.
func (e *Editor) retargetLink(url string) error {
	p := e.curParagraph()
	if p == nil {
		return models.NewValidationError("no link at cursor")
	}
	start, end, href := linkRunAt(p, e.sel.Start)
	if href == "" {
		return e.applyLink(url)
	}
	applyToRange(p, start, end, func(s *Span) { s.Link = url })
	e.changed()
	return nil
}

func (e *Editor) removeLink() error {
	p := e.curParagraph()
	if p == nil {
		return models.NewValidationError("no link at cursor")
	}
	start, end, href := linkRunAt(p, e.sel.Start)
	if href == "" {
		if e.sel.IsCaret() {
			return models.NewValidationError("no link at cursor")
		}
		start, end = e.sel.Start, e.sel.End
	}
	applyToRange(p, start, end, func(s *Span) { s.Link = "" })
	e.changed()
	return nil
}

func (e *Editor) applyColor(color string, background bool) (*InputRequest, error) {
	if e.curParagraph() == nil {
		return nil, models.NewValidationError("cannot format a non-text block")
	}
	// The range is resolved when the value arrives, not when the command is
	// issued, so a Select between Exec and Provide moves the target.
	apply := func(v string) error {
		p := e.curParagraph()
		if p == nil {
			return models.NewValidationError("cannot format a non-text block")
		}
		applyToRange(p, e.sel.Start, e.sel.End, func(s *Span) {
			if background {
				s.Background = v
			} else {
				s.Color = v
			}
		})
		e.changed()
		return nil
	}
	if color == "" {
		prompt := "Text color"
		if background {
			prompt = "Highlight color"
		}
		return e.requestInput(InputColor, prompt, "", apply), nil
	}
	return nil, apply(color)
}

func (e *Editor) clearFormatting() error {
	p := e.curParagraph()
	if p == nil {
		return models.NewValidationError("cannot format a non-text block")
	}
	// Links survive a format clear.
	applyToRange(p, e.sel.Start, e.sel.End, func(s *Span) {
		s.Marks = 0
		s.Color = ""
		s.Background = ""
	})
	e.changed()
	return nil
}

func (e *Editor) insertTable(size string) (*InputRequest, error) {
	if size == "" {
		return e.requestInput(InputTableSize, tableSizePrompt(), "3x3", func(v string) error {
			rows, cols := parseTableSize(v)
			e.insertBlockAfter(&Table{Rows: rows, Cols: cols})
			e.changed()
			return nil
		}), nil
	}
	rows, cols := parseTableSize(size)
	e.insertBlockAfter(&Table{Rows: rows, Cols: cols})
	e.changed()
	return nil, nil
}

func (e *Editor) insertImage(url string) (*InputRequest, error) {
	if url == "" {
		return e.requestInput(InputURL, "Image URL", "", func(v string) error {
			e.insertBlockAfter(&Image{URL: v, Alt: "Uploaded image"})
			e.changed()
			return nil
		}), nil
	}
	e.insertBlockAfter(&Image{URL: url, Alt: "Uploaded image"})
	e.changed()
	return nil, nil
}

func deleteRange(p *Paragraph, start, end int) {
	spans, i := splitAt(p.Spans, start)
	spans, j := splitAt(spans, end)
	out := make([]Span, 0, len(spans))
	out = append(out, spans[:i]...)
	out = append(out, spans[j:]...)
	p.Spans = mergeSpans(out)
}
