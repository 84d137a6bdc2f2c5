package server

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"haven/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeHandler(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	app := fiber.New()
	app.Post("/subscribers", s.Subscribe)

	t.Run("normalizes email", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/subscribers", map[string]string{
			"email": "  Reader@Example.COM ",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		sub := decodeBody[models.Subscriber](t, resp)
		assert.Equal(t, "reader@example.com", sub.Email)
		assert.Equal(t, "website", sub.Source)
	})

	t.Run("repeat signup is not an error", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/subscribers", map[string]string{
			"email": "reader@example.com",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var count int64
		require.NoError(t, db.Model(&models.Subscriber{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/subscribers", map[string]string{
			"email": "not-an-email",
		})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSubscriberAdminHandlers(t *testing.T) {
	t.Parallel()
	s, db := newTestServer(t)
	app := fiber.New()
	app.Get("/admin/subscribers", s.GetSubscribers)
	app.Get("/admin/subscribers/export", s.ExportSubscribers)
	app.Delete("/admin/subscribers/:id", s.DeleteSubscriber)

	first := models.Subscriber{Email: "a@example.com", Source: "website"}
	second := models.Subscriber{Email: "b@example.com", Source: "footer"}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	t.Run("list", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/subscribers", nil))
		require.NoError(t, err)
		subs := decodeBody[[]models.Subscriber](t, resp)
		assert.Len(t, subs, 2)
	})

	t.Run("export is a plain-text download", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/subscribers/export", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/plain")
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "subscribers.txt")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, "a@example.com\nb@example.com", string(body))
	})

	t.Run("delete", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/subscribers/%d", second.ID), nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var count int64
		require.NoError(t, db.Model(&models.Subscriber{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("delete unknown", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/admin/subscribers/999", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
