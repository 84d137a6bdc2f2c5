package editor

// Editor holds a document, a selection, and at most one pending input
// request. It is not safe for concurrent use; callers serialize access.
type Editor struct {
	doc      *Document
	sel      Selection
	pending  *pendingInput
	onChange func(html string)
}

// New returns an editor over a fresh single-paragraph document with the caret
// at the start.
func New() *Editor {
	return &Editor{doc: NewDocument()}
}

// NewFromDocument returns an editor over doc with the caret at the start of
// the first block. A nil or empty doc is replaced with a fresh one.
func NewFromDocument(doc *Document) *Editor {
	if doc == nil || len(doc.Blocks) == 0 {
		doc = NewDocument()
	}
	return &Editor{doc: doc}
}

// SetOnChange registers a callback invoked with the serialized HTML after
// every mutation.
func (e *Editor) SetOnChange(fn func(html string)) {
	e.onChange = fn
}

// Document returns the underlying document.
func (e *Editor) Document() *Document { return e.doc }

// Selection returns the current selection.
func (e *Editor) Selection() Selection { return e.sel }

// HasLinks reports whether the document currently contains any hyperlink.
func (e *Editor) HasLinks() bool { return e.doc.ContainsLink() }

// HTML serializes the current document.
func (e *Editor) HTML() string { return e.doc.HTML() }

// PlainText returns the document's text content.
func (e *Editor) PlainText() string { return e.doc.PlainText() }

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange(e.doc.HTML())
	}
}

// curParagraph returns the selected paragraph, or nil when the selection sits
// on a non-text block.
func (e *Editor) curParagraph() *Paragraph {
	p, _ := e.doc.Blocks[e.sel.Block].(*Paragraph)
	return p
}

// insertBlockAfter places blk after the current block and moves the caret
// into the paragraph that follows it, creating one when needed.
func (e *Editor) insertBlockAfter(blk Block) {
	at := e.sel.Block + 1
	blocks := make([]Block, 0, len(e.doc.Blocks)+2)
	blocks = append(blocks, e.doc.Blocks[:at]...)
	blocks = append(blocks, blk)
	rest := e.doc.Blocks[at:]
	caret := at + 1
	if len(rest) == 0 {
		blocks = append(blocks, &Paragraph{})
	} else if _, ok := rest[0].(*Paragraph); !ok {
		blocks = append(blocks, &Paragraph{})
	}
	blocks = append(blocks, rest...)
	e.doc.Blocks = blocks
	e.sel = Selection{Block: caret}
}
