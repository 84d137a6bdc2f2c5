package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"haven/internal/cache"
	"haven/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Draft tests swap the package-global cache client, so they do not run in
// parallel with each other or with any other test touching the cache.
func setupDraftApp(t *testing.T) *fiber.App {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(client)
	t.Cleanup(func() {
		cache.SetClient(nil)
		client.Close()
	})

	s, _ := newTestServer(t)
	app := fiber.New()
	app.Post("/admin/drafts", s.CreateDraft)
	app.Get("/admin/drafts/:sessionID", s.GetDraft)
	app.Post("/admin/drafts/:sessionID/select", s.DraftSelect)
	app.Post("/admin/drafts/:sessionID/commands", s.DraftExec)
	app.Post("/admin/drafts/:sessionID/input", s.DraftProvide)
	app.Delete("/admin/drafts/:sessionID", s.DiscardDraft)
	return app
}

func TestDraftEditingSession(t *testing.T) {
	app := setupDraftApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/drafts", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	snap := decodeBody[service.DraftSnapshot](t, resp)
	require.NotEmpty(t, snap.SessionID)
	assert.Equal(t, "<p><br></p>", snap.HTML)

	base := "/admin/drafts/" + snap.SessionID

	resp, err = app.Test(jsonRequest(t, http.MethodPost, base+"/commands", map[string]string{
		"kind": "insert_text", "value": "drafting here",
	}))
	require.NoError(t, err)
	snap = decodeBody[service.DraftSnapshot](t, resp)
	assert.Equal(t, "<p>drafting here</p>", snap.HTML)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, base+"/select", map[string]int{
		"block": 0, "start": 0, "end": 8,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodPost, base+"/commands", map[string]string{
		"kind": "bold",
	}))
	require.NoError(t, err)
	snap = decodeBody[service.DraftSnapshot](t, resp)
	assert.Equal(t, "<p><strong>drafting</strong> here</p>", snap.HTML)

	// The session state is in storage, not handler memory.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, base, nil))
	require.NoError(t, err)
	snap = decodeBody[service.DraftSnapshot](t, resp)
	assert.Equal(t, "<p><strong>drafting</strong> here</p>", snap.HTML)
	assert.Equal(t, "drafting here", snap.PlainText)
}

func TestDraftInputRoundTrip(t *testing.T) {
	app := setupDraftApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/drafts", nil))
	require.NoError(t, err)
	snap := decodeBody[service.DraftSnapshot](t, resp)
	base := "/admin/drafts/" + snap.SessionID

	resp, err = app.Test(jsonRequest(t, http.MethodPost, base+"/commands", map[string]string{
		"kind": "insert_text", "value": "visit the help line",
	}))
	require.NoError(t, err)
	_ = resp.Body.Close()
	resp, err = app.Test(jsonRequest(t, http.MethodPost, base+"/select", map[string]int{
		"block": 0, "start": 10, "end": 19,
	}))
	require.NoError(t, err)
	_ = resp.Body.Close()

	// A link command without a URL suspends and asks for input.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, base+"/commands", map[string]string{
		"kind": "insert_link",
	}))
	require.NoError(t, err)
	snap = decodeBody[service.DraftSnapshot](t, resp)
	require.NotNil(t, snap.Input)
	assert.Equal(t, "url", string(snap.Input.Kind))
	assert.False(t, snap.HasLinks)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, base+"/input", map[string]string{
		"value": "https://example.org/help",
	}))
	require.NoError(t, err)
	snap = decodeBody[service.DraftSnapshot](t, resp)
	assert.Nil(t, snap.Input)
	assert.True(t, snap.HasLinks)
	assert.Contains(t, snap.HTML, `href="https://example.org/help"`)

	// Nothing left to answer.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, base+"/input", map[string]string{
		"value": "again",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDraftDiscard(t *testing.T) {
	app := setupDraftApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/admin/drafts", nil))
	require.NoError(t, err)
	snap := decodeBody[service.DraftSnapshot](t, resp)
	base := "/admin/drafts/" + snap.SessionID

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, base, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, base, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDraftUnknownSession(t *testing.T) {
	app := setupDraftApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/admin/drafts/%s/commands", "no-such-session"), map[string]string{
			"kind": "bold",
		}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
