package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/web/session"
)

func setupStorage(t *testing.T) *session.GormStorage {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Session{}))

	return session.NewGormStorage(db)
}

func TestGormStorage(t *testing.T) {
	s := setupStorage(t)

	v, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Set("a", []byte("one"), time.Minute))
	require.NoError(t, s.Set("a", []byte("two"), time.Minute))

	v, err = s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), v)

	require.NoError(t, s.Set("old", []byte("x"), time.Nanosecond))
	time.Sleep(time.Second)

	v, err = s.Get("old")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Delete("a"))

	v, err = s.Get("a")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestData_SaveRead(t *testing.T) {
	session.Init(setupStorage(t))

	d := session.New(&models.User{ID: 7, Username: "alice"}, time.Hour)
	assert.Len(t, d.SessKey, 10)

	d.AddNotice("success", "Slide deleted")
	require.NoError(t, d.Save("sid"))

	var got session.Data
	require.NoError(t, got.Read("sid"))
	assert.Equal(t, "alice", got.User.Username)
	assert.Equal(t, d.SessKey, got.SessKey)

	notices := got.TakeNotices()
	assert.Equal(t, []session.Notice{{Type: "success", Message: "Slide deleted"}}, notices)
	assert.Empty(t, got.TakeNotices())

	require.ErrorIs(t, new(session.Data).Read("unknown"), session.ErrNoSession)

	expired := session.New(&models.User{ID: 7}, -time.Minute)
	require.ErrorIs(t, expired.Save("gone"), session.ErrNoSession)

	require.NoError(t, session.Delete("sid"))
	require.ErrorIs(t, new(session.Data).Read("sid"), session.ErrNoSession)
}

func TestLoad(t *testing.T) {
	session.Init(setupStorage(t))

	d := session.New(&models.User{ID: 3, Username: "bob"}, time.Hour)
	require.NoError(t, d.Save("cookie-value"))

	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		got, id, err := session.Load(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		again, _, _ := session.Load(c)
		if again != got {
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		return c.SendString(id + ":" + got.User.Username)
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "cookie-value"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
