package dashboard

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/slider"
	"github.com/GoSlider/GoSlider/internal/web/handler"
	"github.com/GoSlider/GoSlider/internal/web/handler/handlertest"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()

	env := handlertest.New(t)
	require.NoError(t, new(Service).Init(env.App, env.Deps))

	return env
}

func TestInit_Nil(t *testing.T) {
	assert.Error(t, new(Service).Init(nil, nil))
	assert.Error(t, new(Service).Init(fiber.New(), nil))
}

func TestGet(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	for _, name := range []string{"Banana", "apple", "Cherry"} {
		_, err := env.Deps.Instances.Create(ctx, name)
		require.NoError(t, err)
	}

	sid, _ := env.Login(t, "viewer", auth.PermDashboardView)

	resp := env.Get(t, Path+"?sort=name&order=desc&search=an", sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	name, data := env.Views.Last()
	require.Equal(t, TemplateName, name)

	d, ok := data["Data"].(Data)
	require.True(t, ok)
	require.Len(t, d.Sliders, 1)
	assert.Equal(t, "Banana", d.Sliders[0].Name)
	assert.False(t, d.CanAdmin)
	assert.False(t, d.CanManage)
	assert.Equal(t, "Page 1 of 1", data["PageOf"])

	resp = env.Get(t, Path+"?sort=name", sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, data = env.Views.Last()
	d = data["Data"].(Data)
	require.Len(t, d.Sliders, 3)
	assert.Equal(t, "apple", d.Sliders[0].Name)
	assert.Equal(t, "Cherry", d.Sliders[2].Name)
}

func TestGet_Forbidden(t *testing.T) {
	env := setup(t)

	sid, _ := env.Login(t, "nobody")

	resp := env.Get(t, Path, sid)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.Get(t, Path, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateCopyDelete(t *testing.T) {
	env := setup(t)

	sid, key := env.Login(t, "admin", auth.PermDashboardView, auth.PermAdminSliders)

	resp := env.PostForm(t, SlidersPath, sid, url.Values{"name": {"Front"}, "sesskey": {key}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	list, err := env.Deps.Instances.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	id := strconv.FormatUint(list[0].ID, 10)
	assert.Equal(t, "/slider/"+id+"/manage", resp.Header.Get("Location"))

	resp = env.PostForm(t, SlidersPath+"/"+id+"/copy", sid, url.Values{"sesskey": {key}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, Path, resp.Header.Get("Location"))

	list, err = env.Deps.Instances.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	notices := handlertest.Notices(t, sid)
	require.Len(t, notices, 2)
	assert.Equal(t, "Slider created", notices[0].Message)
	assert.Equal(t, "Slider copied", notices[1].Message)

	// rendering a page takes the queued notices
	resp = env.Get(t, SlidersPath+"/"+id+"/delete?sesskey="+key, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	name, data := env.Views.Last()
	assert.Equal(t, TemplateDelete, name)
	assert.Equal(t, `Delete slider "Front" with all its slides?`, data["Message"])

	resp = env.PostForm(t, SlidersPath+"/"+id+"/delete", sid, url.Values{"sesskey": {key}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, err = env.Deps.Instances.Get(context.Background(), list[0].ID)
	require.ErrorIs(t, err, slider.ErrNotFound)

	notices = handlertest.Notices(t, sid)
	require.Len(t, notices, 1)
	assert.Equal(t, "Slider deleted", notices[0].Message)
	assert.Equal(t, handler.NoticeSuccess, notices[0].Type)
}

func TestActions_Errors(t *testing.T) {
	env := setup(t)

	sid, key := env.Login(t, "admin", auth.PermAdminSliders)

	tests := []struct {
		name    string
		target  string
		form    url.Values
		message string
	}{
		{name: "bad sesskey", target: SlidersPath, form: url.Values{"name": {"x"}, "sesskey": {"wrong"}},
			message: "Your session token is invalid. Please try again."},
		{name: "empty name", target: SlidersPath, form: url.Values{"name": {" "}, "sesskey": {key}},
			message: "name is required"},
		{name: "unknown slider", target: SlidersPath + "/99/copy", form: url.Values{"sesskey": {key}},
			message: "Invalid slider"},
		{name: "invalid id", target: SlidersPath + "/abc/delete", form: url.Values{"sesskey": {key}},
			message: "Invalid slider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.PostForm(t, tt.target, sid, tt.form)
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, Path, resp.Header.Get("Location"))

			notices := handlertest.Notices(t, sid)
			require.NotEmpty(t, notices)
			last := notices[len(notices)-1]
			assert.Equal(t, handler.NoticeError, last.Type)
			assert.Equal(t, tt.message, last.Message)
		})
	}

	viewer, viewerKey := env.Login(t, "viewer", auth.PermDashboardView)

	resp := env.PostForm(t, SlidersPath, viewer, url.Values{"name": {"x"}, "sesskey": {viewerKey}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSortAndPaginate(t *testing.T) {
	now := time.Now()
	sliders := []slider.Instance{
		{ID: 1, Name: "b", SlideCount: 3, UpdatedAt: now},
		{ID: 2, Name: "A", SlideCount: 1, UpdatedAt: now.Add(-time.Hour)},
		{ID: 3, Name: "c", SlideCount: 2, UpdatedAt: now.Add(time.Hour)},
	}

	sortSliders(sliders, "slides", desc)
	assert.Equal(t, uint64(1), sliders[0].ID)

	sortSliders(sliders, "updated", "asc")
	assert.Equal(t, uint64(2), sliders[0].ID)

	sortSliders(sliders, "name", "asc")
	assert.Equal(t, "A", sliders[0].Name)

	page, total, actual := paginateSliders(sliders, 5, 2)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, actual)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].Name)

	page, total, actual = paginateSliders(nil, 1, 25)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, actual)
	assert.Empty(t, page)
}
