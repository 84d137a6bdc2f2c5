package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haven/internal/models"
)

func requireValidationError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func typeText(t *testing.T, e *Editor, text string) {
	t.Helper()
	_, err := e.Exec(Command{Kind: CmdInsertText, Value: text})
	require.NoError(t, err)
}

func TestEditorEmptyDocument(t *testing.T) {
	t.Parallel()

	e := New()
	assert.Equal(t, "<p><br></p>", e.HTML())
	assert.False(t, e.HasLinks())
	assert.Equal(t, "", e.PlainText())
}

func TestEditorInsertText(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "hello")
	typeText(t, e, " world")
	assert.Equal(t, "<p>hello world</p>", e.HTML())
	assert.Equal(t, "hello world", e.PlainText())

	// Typing over a selection replaces it.
	require.NoError(t, e.Select(0, 6, 11))
	typeText(t, e, "there")
	assert.Equal(t, "<p>hello there</p>", e.HTML())
}

func TestEditorToggleMarks(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "hello world")

	require.NoError(t, e.Select(0, 0, 5))
	_, err := e.Exec(Command{Kind: CmdBold})
	require.NoError(t, err)
	assert.Equal(t, "<p><strong>hello</strong> world</p>", e.HTML())

	// Toggling again on a fully bold range removes the mark.
	_, err = e.Exec(Command{Kind: CmdBold})
	require.NoError(t, err)
	assert.Equal(t, "<p>hello world</p>", e.HTML())

	require.NoError(t, e.Select(0, 6, 11))
	_, err = e.Exec(Command{Kind: CmdItalic})
	require.NoError(t, err)
	_, err = e.Exec(Command{Kind: CmdUnderline})
	require.NoError(t, err)
	assert.Equal(t, "<p>hello <em><u>world</u></em></p>", e.HTML())
}

func TestEditorToggleMarkAtCaretIsNoop(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "text")
	require.NoError(t, e.Select(0, 2, 2))
	_, err := e.Exec(Command{Kind: CmdBold})
	require.NoError(t, err)
	assert.Equal(t, "<p>text</p>", e.HTML())
}

func TestEditorAlignment(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "centered")
	_, err := e.Exec(Command{Kind: CmdAlignCenter})
	require.NoError(t, err)
	assert.Equal(t, `<p style="text-align: center;">centered</p>`, e.HTML())

	_, err = e.Exec(Command{Kind: CmdAlignLeft})
	require.NoError(t, err)
	assert.Equal(t, `<p style="text-align: left;">centered</p>`, e.HTML())
}

func TestEditorLists(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "first item")
	_, err := e.Exec(Command{Kind: CmdBulletList})
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>first item</li></ul>", e.HTML())

	e2 := New()
	typeText(t, e2, "step one")
	_, err = e2.Exec(Command{Kind: CmdNumberList})
	require.NoError(t, err)
	assert.Equal(t, "<ol><li>step one</li></ol>", e2.HTML())
}

func TestEditorLinkRequiresSelection(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "some text")
	require.NoError(t, e.Select(0, 4, 4))
	_, err := e.Exec(Command{Kind: CmdInsertLink, Value: "https://example.com"})
	requireValidationError(t, err)
	assert.False(t, e.HasLinks())
}

func TestEditorInsertLink(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "visit the resource page")
	require.NoError(t, e.Select(0, 10, 23))
	_, err := e.Exec(Command{Kind: CmdInsertLink, Value: "https://example.com/help"})
	require.NoError(t, err)

	assert.True(t, e.HasLinks())
	html := e.HTML()
	assert.Contains(t, html, `<a href="https://example.com/help"`)
	assert.Contains(t, html, `target="_blank"`)
	assert.Contains(t, html, `rel="noopener noreferrer"`)
	assert.Contains(t, html, "color: #8b5cf6")
	assert.Contains(t, html, ">resource page</a>")
}

func TestEditorLinkInputFlow(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "click here")
	require.NoError(t, e.Select(0, 0, 10))

	req, err := e.Exec(Command{Kind: CmdInsertLink})
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, InputURL, req.Kind)

	require.NoError(t, e.Provide("https://example.com"))
	assert.True(t, e.HasLinks())
	assert.Nil(t, e.PendingInput())

	// Providing without a pending request is rejected.
	requireValidationError(t, e.Provide("https://other.example.com"))
}

func TestEditorProvideEmptyCancels(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "click here")
	require.NoError(t, e.Select(0, 0, 10))

	req, err := e.Exec(Command{Kind: CmdInsertLink})
	require.NoError(t, err)
	require.NotNil(t, req)

	require.NoError(t, e.Provide("  "))
	assert.False(t, e.HasLinks())
	assert.Nil(t, e.PendingInput())
}

func TestEditorEditLink(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "hello world")
	require.NoError(t, e.Select(0, 6, 11))
	_, err := e.Exec(Command{Kind: CmdInsertLink, Value: "https://old.example.com"})
	require.NoError(t, err)

	// A caret inside the linked run retargets the whole run.
	require.NoError(t, e.Select(0, 8, 8))
	req, err := e.Exec(Command{Kind: CmdEditLink})
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, InputURL, req.Kind)
	assert.Equal(t, "https://old.example.com", req.Default)

	require.NoError(t, e.Provide("https://new.example.com"))
	assert.Contains(t, e.HTML(), `href="https://new.example.com"`)
	assert.NotContains(t, e.HTML(), "old.example.com")
}

func TestEditorRemoveLink(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "hello world")
	require.NoError(t, e.Select(0, 0, 5))
	_, err := e.Exec(Command{Kind: CmdInsertLink, Value: "https://example.com"})
	require.NoError(t, err)
	require.True(t, e.HasLinks())

	require.NoError(t, e.Select(0, 2, 2))
	_, err = e.Exec(Command{Kind: CmdRemoveLink})
	require.NoError(t, err)
	assert.False(t, e.HasLinks())
	assert.Equal(t, "<p>hello world</p>", e.HTML())

	// Nothing left to unlink.
	_, err = e.Exec(Command{Kind: CmdRemoveLink})
	requireValidationError(t, err)
}

func TestEditorLineBreakVersusParagraphBreak(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "a")
	_, err := e.Exec(Command{Kind: CmdLineBreak})
	require.NoError(t, err)
	typeText(t, e, "b")
	assert.Equal(t, "<p>a<br>b</p>", e.HTML())

	e2 := New()
	typeText(t, e2, "one two")
	require.NoError(t, e2.Select(0, 3, 3))
	_, err = e2.Exec(Command{Kind: CmdParagraphBreak})
	require.NoError(t, err)
	assert.Equal(t, "<p>one</p><p> two</p>", e2.HTML())
	assert.Equal(t, Selection{Block: 1}, e2.Selection())
}

func TestEditorColors(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "warning")
	require.NoError(t, e.Select(0, 0, 7))

	req, err := e.Exec(Command{Kind: CmdTextColor})
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, InputColor, req.Kind)
	require.NoError(t, e.Provide("#ff0000"))
	assert.Contains(t, e.HTML(), "color: #ff0000;")

	_, err = e.Exec(Command{Kind: CmdBackgroundColor, Value: "#fef3c7"})
	require.NoError(t, err)
	assert.Contains(t, e.HTML(), "background-color: #fef3c7;")
}

func TestEditorClearFormattingKeepsLinks(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "styled link")
	require.NoError(t, e.Select(0, 0, 11))
	_, err := e.Exec(Command{Kind: CmdBold})
	require.NoError(t, err)
	_, err = e.Exec(Command{Kind: CmdTextColor, Value: "#ff0000"})
	require.NoError(t, err)
	_, err = e.Exec(Command{Kind: CmdInsertLink, Value: "https://example.com"})
	require.NoError(t, err)

	_, err = e.Exec(Command{Kind: CmdClearFormatting})
	require.NoError(t, err)

	html := e.HTML()
	assert.NotContains(t, html, "<strong>")
	assert.NotContains(t, html, "#ff0000")
	assert.Contains(t, html, `href="https://example.com"`)
	assert.True(t, e.HasLinks())
}

func TestEditorInsertTable(t *testing.T) {
	t.Parallel()

	t.Run("explicit size", func(t *testing.T) {
		t.Parallel()
		e := New()
		_, err := e.Exec(Command{Kind: CmdInsertTable, Value: "2x4"})
		require.NoError(t, err)
		html := e.HTML()
		assert.Equal(t, 4, strings.Count(html, "<th"))
		assert.Contains(t, html, "Header 4")
		assert.Equal(t, 3, strings.Count(html, "<tr>")) // header plus two body rows
	})

	t.Run("malformed size falls back to 3x3", func(t *testing.T) {
		t.Parallel()
		e := New()
		_, err := e.Exec(Command{Kind: CmdInsertTable, Value: "huge"})
		require.NoError(t, err)
		html := e.HTML()
		assert.Equal(t, 3, strings.Count(html, "<th"))
		assert.Equal(t, 4, strings.Count(html, "<tr>"))
	})

	t.Run("prompted size", func(t *testing.T) {
		t.Parallel()
		e := New()
		req, err := e.Exec(Command{Kind: CmdInsertTable})
		require.NoError(t, err)
		require.NotNil(t, req)
		assert.Equal(t, InputTableSize, req.Kind)
		assert.Equal(t, "3x3", req.Default)
		require.NoError(t, e.Provide("1x2"))
		assert.Equal(t, 2, strings.Count(e.HTML(), "<th"))
	})
}

func TestEditorInsertRuleAndImage(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "above")
	_, err := e.Exec(Command{Kind: CmdInsertRule})
	require.NoError(t, err)
	typeText(t, e, "below")

	html := e.HTML()
	assert.Contains(t, html, "<hr style=")
	assert.Contains(t, html, "<p>above</p>")
	assert.Contains(t, html, "<p>below</p>")

	_, err = e.Exec(Command{Kind: CmdInsertImage, Value: "https://i.example.com/photo.jpg"})
	require.NoError(t, err)
	html = e.HTML()
	assert.Contains(t, html, `<img src="https://i.example.com/photo.jpg"`)
	assert.Contains(t, html, `alt="Uploaded image"`)
	assert.Contains(t, html, "Image unavailable")
}

func TestEditorEscapesText(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "<script>alert(1)</script> & more")
	html := e.HTML()
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "&amp; more")
}

func TestEditorEscapesAttributes(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "terms")
	require.NoError(t, e.Select(0, 0, 5))
	_, err := e.Exec(Command{Kind: CmdInsertLink, Value: `https://example.com/?a=1&b="two"`})
	require.NoError(t, err)

	html := e.HTML()
	assert.Contains(t, html, `href="https://example.com/?a=1&amp;b=&#34;two&#34;"`)
	assert.NotContains(t, html, `\"`)

	e2 := New()
	_, err = e2.Exec(Command{Kind: CmdInsertImage, Value: `https://img.example.com/a.jpg?sig=x&v="1"`})
	require.NoError(t, err)
	assert.Contains(t, e2.HTML(), `src="https://img.example.com/a.jpg?sig=x&amp;v=&#34;1&#34;"`)
	assert.NotContains(t, e2.HTML(), `\"`)
}

func TestEditorPendingColorTracksSelection(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "red blue")
	require.NoError(t, e.Select(0, 0, 3))
	req, err := e.Exec(Command{Kind: CmdTextColor})
	require.NoError(t, err)
	require.NotNil(t, req)

	// Moving the selection while the request is pending moves the target.
	require.NoError(t, e.Select(0, 4, 8))
	require.NoError(t, e.Provide("#0000ff"))
	assert.Equal(t, `<p>red <span style="color: #0000ff;">blue</span></p>`, e.HTML())
}

func TestEditorPendingLinkEditTracksCursor(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "one two")
	require.NoError(t, e.Select(0, 0, 3))
	_, err := e.Exec(Command{Kind: CmdInsertLink, Value: "https://first.example.com"})
	require.NoError(t, err)
	require.NoError(t, e.Select(0, 4, 7))
	_, err = e.Exec(Command{Kind: CmdInsertLink, Value: "https://second.example.com"})
	require.NoError(t, err)

	// Open an edit on the first link, then move the cursor into the second
	// before answering. The value lands on the link under the cursor.
	require.NoError(t, e.Select(0, 1, 1))
	req, err := e.Exec(Command{Kind: CmdEditLink})
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "https://first.example.com", req.Default)

	require.NoError(t, e.Select(0, 5, 5))
	require.NoError(t, e.Provide("https://changed.example.com"))
	html := e.HTML()
	assert.Contains(t, html, `href="https://first.example.com"`)
	assert.Contains(t, html, `href="https://changed.example.com"`)
	assert.NotContains(t, html, "second.example.com")
}

func TestEditorOnChange(t *testing.T) {
	t.Parallel()

	e := New()
	var calls int
	var last string
	e.SetOnChange(func(html string) {
		calls++
		last = html
	})

	typeText(t, e, "hi")
	require.NoError(t, e.Select(0, 0, 2))
	_, err := e.Exec(Command{Kind: CmdBold})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, "<p><strong>hi</strong></p>", last)
}

func TestEditorSelectionValidation(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "abc")

	requireValidationError(t, e.Select(5, 0, 0))
	requireValidationError(t, e.Select(0, 2, 1))
	requireValidationError(t, e.Select(0, 0, 10))
	require.NoError(t, e.Select(0, 0, 3))
}

func TestEditorNewCommandAbandonsPendingInput(t *testing.T) {
	t.Parallel()

	e := New()
	typeText(t, e, "link me")
	require.NoError(t, e.Select(0, 0, 7))
	req, err := e.Exec(Command{Kind: CmdInsertLink})
	require.NoError(t, err)
	require.NotNil(t, req)

	_, err = e.Exec(Command{Kind: CmdBold})
	require.NoError(t, err)
	assert.Nil(t, e.PendingInput())
	requireValidationError(t, e.Provide("https://example.com"))
}
