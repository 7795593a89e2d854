// Package handlertest wires the handlers to an in-memory database, a
// temporary asset directory and a recording views engine for tests.
package handlertest

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GoSlider/GoSlider/internal/asset"
	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/config"
	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/i18n"
	"github.com/GoSlider/GoSlider/internal/render"
	"github.com/GoSlider/GoSlider/internal/slider"
	"github.com/GoSlider/GoSlider/internal/web/handler"
	"github.com/GoSlider/GoSlider/internal/web/session"
)

// PNGHeader is enough of a png for the content sniffer.
var PNGHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// Views is a views engine that records the last render and writes the
// template name, followed by the "error" value when there is one.
type Views struct {
	mu   sync.Mutex
	name string
	data fiber.Map
}

// Load implements fiber.Views.
func (*Views) Load() error { return nil }

// Render implements fiber.Views.
func (v *Views) Render(w io.Writer, name string, data any, _ ...string) error {
	m, _ := data.(fiber.Map)

	v.mu.Lock()
	v.name, v.data = name, m
	v.mu.Unlock()

	if e, ok := m["error"].(string); ok && e != "" {
		_, err := io.WriteString(w, name+": "+e)
		return err
	}

	_, err := io.WriteString(w, name)

	return err
}

// Last returns the template name and data of the last render.
func (v *Views) Last() (string, fiber.Map) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.name, v.data
}

// Env is a test environment.
type Env struct {
	App    *fiber.App
	DB     *gorm.DB
	Deps   *handler.Deps
	Views  *Views
	Assets *asset.LocalStore
}

// New returns an environment with migrated tables and the session storage
// initialised on the same database.
func New(t *testing.T) *Env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Group{},
		&models.GroupMapping{},
		&models.UserGroup{},
		&models.Setting{},
		&models.Session{},
		&models.Slider{},
		&models.Slide{},
	))

	session.Init(session.NewGormStorage(db))

	assets, err := asset.NewLocalStore(asset.LocalConfig{Path: t.TempDir(), BaseURL: "/assets"})
	require.NoError(t, err)

	catalog, err := i18n.New()
	require.NoError(t, err)

	validate := validator.New()
	require.NoError(t, catalog.RegisterValidator(validate))

	store := slider.NewStore(db, assets)

	deps := &handler.Deps{
		Cfg: &config.Config{
			Webserver: config.Webserver{
				URL:           "http://localhost",
				Port:          3000,
				MaxUploadSize: 1 << 20,
				Session:       config.Session{ExpiryTime: time.Hour},
			},
			Auth: config.Auth{LocalDB: config.LocalDBAuth{Enabled: true}},
		},
		DB:        db,
		Auth:      auth.NewService(db),
		Slides:    store,
		Instances: slider.NewInstances(db, slider.NewLifecycle(db, store)),
		Renderer:  render.New(assets, catalog),
		Strings:   catalog,
		Validate:  validate,
	}

	views := &Views{}

	return &Env{
		App:    fiber.New(fiber.Config{Views: views}),
		DB:     db,
		Deps:   deps,
		Views:  views,
		Assets: assets,
	}
}

// Login creates a user holding perms and a session for it. It returns the
// session id and the session token.
func (e *Env) Login(t *testing.T, username string, perms ...string) (sessionID, sessKey string) {
	t.Helper()

	role := models.Role{Name: "role-" + username}
	require.NoError(t, e.DB.Create(&role).Error)

	for _, name := range perms {
		p := models.Permission{Name: name, Resource: "test", Action: "test"}
		require.NoError(t, e.DB.Where("name = ?", name).FirstOrCreate(&p).Error)
		require.NoError(t, e.DB.Create(&models.RolePermission{RoleID: role.ID, PermissionID: p.ID}).Error)
	}

	user, err := auth.NewLocalProvider(e.DB).CreateUser(username, username+"@example.com", "secret", "", "", role.ID)
	require.NoError(t, err)

	sessionID, err = session.GenerateSessionID()
	require.NoError(t, err)

	sess := session.New(user, time.Hour)
	require.NoError(t, sess.Save(sessionID))

	return sessionID, sess.SessKey
}

// Notices returns the queued notices of a session without taking them.
func Notices(t *testing.T, sessionID string) []session.Notice {
	t.Helper()

	var d session.Data
	require.NoError(t, d.Read(sessionID))

	return d.Notices
}

// Do runs req against the app with the session cookie set.
func (e *Env) Do(t *testing.T, req *http.Request, sessionID string) *http.Response {
	t.Helper()

	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	}

	resp, err := e.App.Test(req)
	require.NoError(t, err)

	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

// Get runs a GET request.
func (e *Env) Get(t *testing.T, target, sessionID string) *http.Response {
	t.Helper()

	return e.Do(t, httptest.NewRequest(http.MethodGet, target, http.NoBody), sessionID)
}

// PostForm runs a form encoded POST request.
func (e *Env) PostForm(t *testing.T, target, sessionID string, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return e.Do(t, req, sessionID)
}

// PostMultipart runs a multipart POST request with an optional file.
func (e *Env) PostMultipart(
	t *testing.T, target, sessionID string, fields map[string]string, fileField, fileName string, content []byte,
) *http.Response {
	t.Helper()

	var body bytes.Buffer

	w := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	if fileName != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)

		_, err = fw.Write(content)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return e.Do(t, req, sessionID)
}

// Body reads the response body.
func Body(t *testing.T, resp *http.Response) string {
	t.Helper()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}
