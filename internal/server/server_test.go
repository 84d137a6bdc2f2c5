package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"haven/internal/config"
	"haven/internal/models"
	"haven/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestConstructedServerAcceptsAdminTokens drives an admin route through a
// server built with the production constructor rather than a hand-assembled
// Server, so the auth middleware is initialized exactly the way main does it.
// The constructor registers prometheus collectors with the default registry,
// so it must run exactly once across the package's tests.
func TestConstructedServerAcceptsAdminTokens(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{
		Env:       "test",
		JWTSecret: "test-secret-at-least-32-chars-long!",
	}
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	s.SetupRoutes(app)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := models.Admin{Username: "editor", Email: "editor@haven.test", Password: string(hash)}
	require.NoError(t, db.Create(&admin).Error)

	t.Run("no token is rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/flags", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("issued token passes the gate", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "editor",
			"password": "correct horse",
		}))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result := decodeBody[service.LoginResult](t, resp)
		require.NotEmpty(t, result.Token)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/flags", nil)
		req.Header.Set("Authorization", "Bearer "+result.Token)
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
