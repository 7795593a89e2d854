package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/web/session"
)

type memStorage map[string][]byte

func (m memStorage) Get(key string) ([]byte, error) { return m[key], nil }

func (m memStorage) Set(key string, val []byte, _ time.Duration) error {
	m[key] = val
	return nil
}

func (m memStorage) Delete(key string) error {
	delete(m, key)
	return nil
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware)
	app.All("/*", func(c fiber.Ctx) error {
		if u, ok := c.Locals("CurrentUser").(models.User); ok {
			return c.SendString("user:" + u.Username)
		}

		return c.SendString("anonymous")
	})

	return app
}

func TestIsSliderView(t *testing.T) {
	assert.True(t, isSliderView("/slider/12"))
	assert.False(t, isSliderView("/slider/12/manage"))
	assert.False(t, isSliderView("/slider/"))
	assert.False(t, isSliderView("/slider/abc"))
	assert.False(t, isSliderView("/sliders/1"))
}

func TestMiddleware(t *testing.T) {
	store := memStorage{}
	session.Init(store)

	require.NoError(t, session.New(&models.User{ID: 1, Username: "alice"}, time.Hour).Save("valid"))

	app := newApp()

	tests := []struct {
		name     string
		path     string
		cookie   string
		status   int
		location string
		body     string
	}{
		{name: "protected without session", path: "/dashboard", status: fiber.StatusSeeOther, location: LoginPath},
		{name: "protected with session", path: "/dashboard", cookie: "valid", status: fiber.StatusOK, body: "user:alice"},
		{name: "unknown session", path: "/slider/1/manage", cookie: "stale", status: fiber.StatusSeeOther, location: LoginPath},
		{name: "login page", path: "/login", status: fiber.StatusOK, body: "anonymous"},
		{name: "login page logged in", path: "/login", cookie: "valid", status: fiber.StatusSeeOther, location: HomePath},
		{name: "public slider", path: "/slider/3", status: fiber.StatusOK, body: "anonymous"},
		{name: "public slider logged in", path: "/slider/3", cookie: "valid", status: fiber.StatusOK, body: "user:alice"},
		{name: "static", path: "/static/css/app.css", status: fiber.StatusOK},
		{name: "assets", path: "/assets/1/a.png", status: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.location != "" {
				assert.Equal(t, tt.location, resp.Header.Get("Location"))
			}

			if tt.body != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}
