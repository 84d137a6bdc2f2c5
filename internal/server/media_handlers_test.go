package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"haven/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartImage(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), A: 255})
		}
	}
	var encoded bytes.Buffer
	require.NoError(t, png.Encode(&encoded, img))

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(encoded.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadImageHandler(t *testing.T) {
	t.Parallel()
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"status":  200,
			"data": map[string]any{
				"url":   "https://cdn.example.com/full.png",
				"thumb": map[string]any{"url": "https://cdn.example.com/thumb.png"},
			},
		})
	}))
	t.Cleanup(host.Close)

	s, _ := newTestServer(t)
	s.mediaService = service.NewMediaServiceWithClient(host.Client(), host.URL, "key", 10*1024*1024)

	app := fiber.New()
	app.Post("/admin/media", s.UploadImage)

	t.Run("forwards to the image host", func(t *testing.T) {
		body, contentType := multipartImage(t, "image", "photo.png")
		req := httptest.NewRequest(http.MethodPost, "/admin/media", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		result := decodeBody[service.UploadResult](t, resp)
		assert.Equal(t, "https://cdn.example.com/full.png", result.URL)
		assert.Equal(t, "https://cdn.example.com/thumb.png", result.ThumbURL)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/media", bytes.NewReader(nil))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong field name", func(t *testing.T) {
		body, contentType := multipartImage(t, "file", "photo.png")
		req := httptest.NewRequest(http.MethodPost, "/admin/media", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
