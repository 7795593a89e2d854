package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("Front page slider", "sliders")

	assert.Equal(t, "Front page slider", ctx.PageTitle)
	assert.Equal(t, "sliders", ctx.ActiveSection)
	assert.NotNil(t, ctx.Breadcrumbs)
	assert.Empty(t, ctx.Breadcrumbs)
}

func TestContext_AddBreadcrumb_Chaining(t *testing.T) {
	ctx := NewContext("Manage slides", "sliders").
		AddBreadcrumb("Dashboard", "/dashboard", false).
		AddBreadcrumb("Front page", "/slider/1", false).
		AddBreadcrumb("Manage slides", "", true)

	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.Equal(t, "Dashboard", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "/slider/1", ctx.Breadcrumbs[1].URL)
	assert.False(t, ctx.Breadcrumbs[1].Active)
	assert.True(t, ctx.Breadcrumbs[2].Active)
}

func TestContext_IsSectionActive(t *testing.T) {
	ctx := NewContext("Dashboard", "dashboard")

	assert.True(t, ctx.IsSectionActive("dashboard"))
	assert.False(t, ctx.IsSectionActive("sliders"))

	var none *Context
	assert.False(t, none.IsSectionActive("dashboard"))
}
