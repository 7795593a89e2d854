// Package dashboard lists the slider instances and carries the instance
// actions: create, copy and delete.
package dashboard

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/i18n"
	"github.com/GoSlider/GoSlider/internal/slider"
	"github.com/GoSlider/GoSlider/internal/web/handler"
	"github.com/GoSlider/GoSlider/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// SlidersPath is the base of the instance actions.
	SlidersPath = Path + "/sliders"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	// TemplateDelete is the name of the deletion confirmation template.
	TemplateDelete = "dashboard/delete"

	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 25

	desc = "desc"
)

// QueryParams holds the query and pagination parameters.
type QueryParams struct {
	Page        int
	PageSize    int
	SearchQuery string
	SortField   string
	SortOrder   string
}

// Data represents the dashboard data.
type Data struct {
	Sliders     []slider.Instance
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int
	HasPrevPage bool
	HasNextPage bool
	PrevPage    int
	NextPage    int
	SearchQuery string
	SortField   string
	SortOrder   string
	CanAdmin    bool
	CanManage   bool
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.deps = deps

	app.Get(Path,
		auth.RequirePermission(deps.Auth, auth.PermDashboardView),
		s.Get,
	)

	admin := app.Group(SlidersPath, auth.RequirePermission(deps.Auth, auth.PermAdminSliders))
	admin.Post(handler.RouterRootPath, s.Create)
	admin.Post("/:id/copy", s.Copy)
	admin.Get("/:id/delete", s.ConfirmDelete)
	admin.Post("/:id/delete", s.Delete)

	return nil
}

func (s *Service) str(key string) string {
	return s.deps.Strings.GetString(key, i18n.DomainSlider)
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c fiber.Ctx) error {
	nav := navigation.NewContext(s.deps.Strings.GetString("dashboard", i18n.DomainCore), "dashboard").
		AddBreadcrumb(s.deps.Strings.GetString("home", i18n.DomainCore), Path, false).
		AddBreadcrumb(s.deps.Strings.GetString("dashboard", i18n.DomainCore), Path, true)

	params := QueryParams{
		Page:        fiber.Query[int](c, "page", 1),
		PageSize:    fiber.Query[int](c, "pageSize", DefaultPageSize),
		SearchQuery: c.Query("search", ""),
		SortField:   c.Query("sort", "name"),
		SortOrder:   c.Query("order", "asc"),
	}

	if params.Page < 1 {
		params.Page = 1
	}

	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = DefaultPageSize
	}

	all, err := s.deps.Instances.List(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list sliders")
		return err
	}

	filtered := filterSliders(all, params.SearchQuery)
	sortSliders(filtered, params.SortField, params.SortOrder)

	page, totalPages, actualPage := paginateSliders(filtered, params.Page, params.PageSize)
	params.Page = actualPage

	data := buildData(page, totalPages, &params)
	data.TotalItems = len(filtered)
	data.CanAdmin = auth.HasPermissionInContext(c, s.deps.Auth, auth.PermAdminSliders)
	data.CanManage = auth.HasPermissionInContext(c, s.deps.Auth, auth.PermSliderManage)

	log.Debug().
		Int("total_sliders", len(all)).
		Int("page", params.Page).
		Int("page_size", params.PageSize).
		Str("search", params.SearchQuery).
		Str("sort_field", params.SortField).
		Str("sort_order", params.SortOrder).
		Msg("dashboard sliders retrieved")

	return handler.Render(c, TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
		"PageOf": s.deps.Strings.GetString("page_of", i18n.DomainCore,
			strconv.Itoa(data.CurrentPage), strconv.Itoa(data.TotalPages)),
	})
}

// Create adds a slider instance.
func (s *Service) Create(c fiber.Ctx) error {
	if !handler.ValidSessKey(c) {
		return handler.RedirectWithNotice(c, Path, handler.NoticeError, s.str("errorsesskey"))
	}

	sl, err := s.deps.Instances.Create(c.Context(), c.FormValue("name"))
	if err != nil {
		return s.failed(c, err)
	}

	return handler.RedirectWithNotice(c, manageURL(sl.ID), handler.NoticeSuccess, s.str("slider_created"))
}

// Copy duplicates a slider instance with its settings and slides.
func (s *Service) Copy(c fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.RedirectWithNotice(c, Path, handler.NoticeError, s.str("errorinvalidslider"))
	}

	if !handler.ValidSessKey(c) {
		return handler.RedirectWithNotice(c, Path, handler.NoticeError, s.str("errorsesskey"))
	}

	if _, err := s.deps.Instances.Copy(c.Context(), id, c.FormValue("name")); err != nil {
		return s.failed(c, err)
	}

	return handler.RedirectWithNotice(c, Path, handler.NoticeSuccess, s.str("slider_copied"))
}

// ConfirmDelete asks before a slider and all its slides are removed.
func (s *Service) ConfirmDelete(c fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.RedirectWithNotice(c, Path, handler.NoticeError, s.str("errorinvalidslider"))
	}

	if !handler.ValidSessKey(c) {
		return handler.RedirectWithNotice(c, Path, handler.NoticeError, s.str("errorsesskey"))
	}

	sl, err := s.deps.Instances.Get(c.Context(), id)
	if err != nil {
		return s.failed(c, err)
	}

	title := s.str("delete_slider")

	return handler.Render(c, TemplateDelete, fiber.Map{
		"Navigation": navigation.NewContext(title, "dashboard").
			AddBreadcrumb(s.deps.Strings.GetString("dashboard", i18n.DomainCore), Path, false).
			AddBreadcrumb(title, "", true),
		"Slider":    sl,
		"Message":   s.deps.Strings.GetString("confirm_slider_deletion", i18n.DomainSlider, sl.Name),
		"ActionURL": SlidersPath + "/" + strconv.FormatUint(sl.ID, 10) + "/delete",
		"CancelURL": Path,
	})
}

// Delete removes a slider after confirmation.
func (s *Service) Delete(c fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.RedirectWithNotice(c, Path, handler.NoticeError, s.str("errorinvalidslider"))
	}

	if !handler.ValidSessKey(c) {
		return handler.RedirectWithNotice(c, Path, handler.NoticeError, s.str("errorsesskey"))
	}

	if err := s.deps.Instances.Delete(c.Context(), id); err != nil {
		return s.failed(c, err)
	}

	return handler.RedirectWithNotice(c, Path, handler.NoticeSuccess, s.str("slider_deleted"))
}

// failed turns an instance error into a notice on the dashboard.
func (s *Service) failed(c fiber.Ctx, err error) error {
	var msg string

	switch {
	case errors.Is(err, slider.ErrNotFound):
		msg = s.str("errorinvalidslider")
	case errors.Is(err, slider.ErrValidation):
		msg = strings.TrimPrefix(err.Error(), slider.ErrValidation.Error()+": ")
	default:
		log.Error().Err(err).Msg("slider instance action failed")

		msg = s.deps.Strings.GetString("error", i18n.DomainCore)
	}

	return handler.RedirectWithNotice(c, Path, handler.NoticeError, msg)
}

func manageURL(id uint64) string {
	return "/slider/" + strconv.FormatUint(id, 10) + "/manage"
}

// filterSliders keeps the sliders whose name contains the search query.
func filterSliders(sliders []slider.Instance, searchQuery string) []slider.Instance {
	if searchQuery == "" {
		return sliders
	}

	q := strings.ToLower(searchQuery)
	filtered := make([]slider.Instance, 0)

	for _, sl := range sliders {
		if strings.Contains(strings.ToLower(sl.Name), q) {
			filtered = append(filtered, sl)
		}
	}

	return filtered
}

// sortSliders sorts sliders by the specified field and order.
func sortSliders(sliders []slider.Instance, sortField, sortOrder string) {
	var less func(i, j int) bool

	switch sortField {
	case "name":
		less = func(i, j int) bool {
			return strings.ToLower(sliders[i].Name) < strings.ToLower(sliders[j].Name)
		}
	case "slides":
		less = func(i, j int) bool { return sliders[i].SlideCount < sliders[j].SlideCount }
	case "updated":
		less = func(i, j int) bool { return sliders[i].UpdatedAt.Before(sliders[j].UpdatedAt) }
	default:
		return
	}

	sort.SliceStable(sliders, func(i, j int) bool {
		if sortOrder == desc {
			return less(j, i)
		}

		return less(i, j)
	})
}

// paginateSliders calculates pagination and returns one page of sliders.
func paginateSliders(sliders []slider.Instance, page, pageSize int) (paginated []slider.Instance, totalPages, actualPage int) {
	totalItems := len(sliders)

	totalPages = (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	var (
		startIdx = (page - 1) * pageSize
		endIdx   = min(startIdx+pageSize, totalItems)
	)

	if startIdx < totalItems {
		paginated = sliders[startIdx:endIdx]
	} else {
		paginated = []slider.Instance{}
	}

	return paginated, totalPages, page
}

// buildData creates Data with pagination information.
func buildData(sliders []slider.Instance, totalPages int, params *QueryParams) Data {
	return Data{
		Sliders:     sliders,
		CurrentPage: params.Page,
		PageSize:    params.PageSize,
		TotalItems:  len(sliders),
		TotalPages:  totalPages,
		HasPrevPage: params.Page > 1,
		HasNextPage: params.Page < totalPages,
		PrevPage:    params.Page - 1,
		NextPage:    params.Page + 1,
		SearchQuery: params.SearchQuery,
		SortField:   params.SortField,
		SortOrder:   params.SortOrder,
	}
}
