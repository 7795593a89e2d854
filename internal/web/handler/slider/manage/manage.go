// Package manage serves the admin pages of a slider: the slide list, the
// add and edit form and the two step deletion.
package manage

import (
	"errors"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoSlider/GoSlider/internal/asset"
	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/i18n"
	"github.com/GoSlider/GoSlider/internal/slider"
	"github.com/GoSlider/GoSlider/internal/web/handler"
	"github.com/GoSlider/GoSlider/internal/web/navigation"
	"github.com/GoSlider/GoSlider/internal/web/sesskey"
)

const (
	// Path is the slide list of a slider.
	Path = "/slider/:id/manage"

	// SlideParam is the query parameter carrying the slide id.
	SlideParam = "slide"

	// TemplateList renders the slide table.
	TemplateList = "slider/manage/list"
	// TemplateForm renders the add and edit form.
	TemplateForm = "slider/manage/form"
	// TemplateDelete renders the deletion confirmation.
	TemplateDelete = "slider/manage/delete"

	localsSlider = "manage.slider"
	imageField   = "slide_image"
	dashboard    = "/dashboard"
)

// Row is one line of the slide table.
type Row struct {
	ID          uint64
	SliderID    uint64
	Order       int
	Link        string
	Title       string
	Description string
	ThumbURL    string
	Alt         string
	EditURL     string
	DeleteURL   string
}

// Service is the slide management handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the slide management handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.deps = deps

	router := app.Group(Path,
		auth.RequirePermission(deps.Auth, auth.PermSliderManage),
		s.loadSlider,
	)

	router.Get(handler.RouterRootPath, s.List)
	router.Get("/new", s.New)
	router.Post("/new", s.Create)
	router.Get("/edit", s.Edit)
	router.Post("/edit", s.Update)
	router.Get("/delete", s.ConfirmDelete)
	router.Post("/delete", s.Delete)

	return nil
}

// ListURL returns the slide list of a slider.
func ListURL(sliderID uint64) string {
	return "/slider/" + strconv.FormatUint(sliderID, 10) + "/manage"
}

// EditURL returns the edit form of a slide.
func EditURL(sliderID, slideID uint64) string {
	return ListURL(sliderID) + "/edit?" + SlideParam + "=" + strconv.FormatUint(slideID, 10)
}

// DeleteURL returns the confirmation page of a slide deletion.
func DeleteURL(sliderID, slideID uint64, key string) string {
	q := url.Values{}
	q.Set(SlideParam, strconv.FormatUint(slideID, 10))
	q.Set(sesskey.Param, key)

	return ListURL(sliderID) + "/delete?" + q.Encode()
}

func (s *Service) str(key string) string {
	return s.deps.Strings.GetString(key, i18n.DomainSlider)
}

// loadSlider resolves the slider of the route and checks that the viewer
// may manage it.
func (s *Service) loadSlider(c fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.RedirectWithNotice(c, dashboard, handler.NoticeError, s.str("errorinvalidslider"))
	}

	sl, err := s.deps.Instances.Get(c.Context(), id)
	if errors.Is(err, slider.ErrNotFound) {
		return handler.RedirectWithNotice(c, dashboard, handler.NoticeError, s.str("errorinvalidslider"))
	}

	if err != nil {
		return err
	}

	can, err := s.deps.Auth.HasManageCapability(handler.CurrentUserID(c), sl.ID)
	if err != nil {
		return err
	}

	if !can {
		return fiber.ErrForbidden
	}

	c.Locals(localsSlider, sl)

	return c.Next()
}

func currentSlider(c fiber.Ctx) models.Slider {
	sl, _ := c.Locals(localsSlider).(models.Slider)
	return sl
}

func (s *Service) nav(sl *models.Slider, title string) *navigation.Context {
	return navigation.NewContext(title, "sliders").
		AddBreadcrumb(s.deps.Strings.GetString("dashboard", i18n.DomainCore), dashboard, false).
		AddBreadcrumb(sl.Name, ListURL(sl.ID), false).
		AddBreadcrumb(title, "", true)
}

// List renders the slides in display order.
func (s *Service) List(c fiber.Ctx) error {
	sl := currentSlider(c)

	slides, err := s.deps.Slides.ListSlides(c.Context(), sl.ID)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Navigation": s.nav(&sl, s.str("manage_slides")),
		"Slider":     sl,
	}

	data["Rows"] = s.rows(&sl, slides, handler.SessKey(c))
	data["NewURL"] = ListURL(sl.ID) + "/new"
	data["SettingsURL"] = "/slider/" + strconv.FormatUint(sl.ID, 10) + "/settings"
	data["ViewURL"] = "/slider/" + strconv.FormatUint(sl.ID, 10)

	return handler.Render(c, TemplateList, data)
}

func (s *Service) rows(sl *models.Slider, slides []models.Slide, key string) []Row {
	rows := make([]Row, 0, len(slides))

	for i := range slides {
		sd := &slides[i]

		alt := sd.Title
		if alt == "" {
			alt = sd.Image
		}

		rows = append(rows, Row{
			ID:          sd.ID,
			SliderID:    sl.ID,
			Order:       sd.Order,
			Link:        sd.Link,
			Title:       sd.Title,
			Description: sd.Description,
			ThumbURL:    s.deps.Slides.Assets().URLFor(slider.ImageRef(sd)),
			Alt:         alt,
			EditURL:     EditURL(sl.ID, sd.ID),
			DeleteURL:   DeleteURL(sl.ID, sd.ID, key),
		})
	}

	return rows
}

// New renders the empty form.
func (s *Service) New(c fiber.Ctx) error {
	sl := currentSlider(c)

	return s.renderForm(c, &sl, nil, slideForm{}, "")
}

// Create stores a new slide with its image.
func (s *Service) Create(c fiber.Ctx) error {
	sl := currentSlider(c)

	if !handler.ValidSessKey(c) {
		return handler.RedirectWithNotice(c, ListURL(sl.ID), handler.NoticeError, s.str("errorsesskey"))
	}
	form := readForm(c)

	fields, err := form.fields()
	if err != nil {
		return s.renderForm(c, &sl, nil, form, s.str("errororder"))
	}

	fh, err := c.FormFile(imageField)
	if err != nil {
		return s.renderForm(c, &sl, nil, form, s.str("errorimagerequired"))
	}

	file, closeFile, err := s.open(fh)
	if err != nil {
		return s.renderForm(c, &sl, nil, form, err.Error())
	}
	defer closeFile()

	if _, err = s.deps.Slides.CreateSlide(c.Context(), sl.ID, fields, file); err != nil {
		return s.saveFailed(c, &sl, nil, form, err)
	}

	return handler.RedirectWithNotice(c, ListURL(sl.ID), handler.NoticeSuccess, s.str("created"))
}

// Edit renders the form of an existing slide.
func (s *Service) Edit(c fiber.Ctx) error {
	sl := currentSlider(c)

	slide, ok := s.slideOf(c, &sl)
	if !ok {
		return s.invalidSlide(c, &sl)
	}

	return s.renderForm(c, &sl, &slide, formOf(&slide), "")
}

// Update saves the fields and optionally replaces the image.
func (s *Service) Update(c fiber.Ctx) error {
	sl := currentSlider(c)

	slide, ok := s.slideOf(c, &sl)
	if !ok {
		return s.invalidSlide(c, &sl)
	}

	if !handler.ValidSessKey(c) {
		return handler.RedirectWithNotice(c, ListURL(sl.ID), handler.NoticeError, s.str("errorsesskey"))
	}

	form := readForm(c)

	fields, err := form.fields()
	if err != nil {
		return s.renderForm(c, &sl, &slide, form, s.str("errororder"))
	}

	var file *asset.File

	if fh, errFile := c.FormFile(imageField); errFile == nil {
		f, closeFile, errOpen := s.open(fh)
		if errOpen != nil {
			return s.renderForm(c, &sl, &slide, form, errOpen.Error())
		}
		defer closeFile()

		file = &f
	}

	if _, err = s.deps.Slides.UpdateSlide(c.Context(), slide.ID, fields, file); err != nil {
		if errors.Is(err, slider.ErrNotFound) {
			return s.invalidSlide(c, &sl)
		}

		return s.saveFailed(c, &sl, &slide, form, err)
	}

	return handler.RedirectWithNotice(c, ListURL(sl.ID), handler.NoticeSuccess, s.str("saved"))
}

// ConfirmDelete is the first step of a deletion. It needs the session
// token in the query.
func (s *Service) ConfirmDelete(c fiber.Ctx) error {
	sl := currentSlider(c)

	slide, ok := s.slideOf(c, &sl)
	if !ok {
		return s.invalidSlide(c, &sl)
	}

	if !handler.ValidSessKey(c) {
		return handler.RedirectWithNotice(c, ListURL(sl.ID), handler.NoticeError, s.str("errorsesskey"))
	}

	return handler.Render(c, TemplateDelete, fiber.Map{
		"Navigation": s.nav(&sl, s.deps.Strings.GetString("delete", i18n.DomainCore)),
		"Slider":     sl,
		"Slide":      slide,
		"Row":        s.rows(&sl, []models.Slide{slide}, "")[0],
		"Message":    s.str("confirm_deletion"),
		"ActionURL":  ListURL(sl.ID) + "/delete",
		"CancelURL":  ListURL(sl.ID),
	})
}

// Delete is the confirmed deletion.
func (s *Service) Delete(c fiber.Ctx) error {
	sl := currentSlider(c)

	slide, ok := s.slideOf(c, &sl)
	if !ok {
		return s.invalidSlide(c, &sl)
	}

	if !handler.ValidSessKey(c) {
		return handler.RedirectWithNotice(c, ListURL(sl.ID), handler.NoticeError, s.str("errorsesskey"))
	}

	err := s.deps.Slides.DeleteSlide(c.Context(), slide.ID)

	switch {
	case errors.Is(err, slider.ErrNotFound):
		return s.invalidSlide(c, &sl)
	case err != nil:
		log.Error().Err(err).Uint64("slide", slide.ID).Msg("failed to delete slide")
		return handler.RedirectWithNotice(c, ListURL(sl.ID), handler.NoticeError, s.str("errorsave"))
	}

	return handler.RedirectWithNotice(c, ListURL(sl.ID), handler.NoticeSuccess, s.str("deleted"))
}

// slideOf looks up the slide named by the request. A slide of another
// slider counts as missing.
func (s *Service) slideOf(c fiber.Ctx, sl *models.Slider) (models.Slide, bool) {
	raw := c.FormValue(SlideParam)
	if raw == "" {
		raw = c.Query(SlideParam)
	}

	id, ok := handler.ParseID(raw)
	if !ok {
		return models.Slide{}, false
	}

	slide, err := s.deps.Slides.GetSlide(c.Context(), id)
	if err != nil {
		if !errors.Is(err, slider.ErrNotFound) {
			log.Error().Err(err).Uint64("slide", id).Msg("failed to load slide")
		}

		return models.Slide{}, false
	}

	if slide.SliderID != sl.ID {
		return models.Slide{}, false
	}

	return slide, true
}

func (s *Service) invalidSlide(c fiber.Ctx, sl *models.Slider) error {
	return handler.RedirectWithNotice(c, ListURL(sl.ID), handler.NoticeError, s.str("errorinvalidslide"))
}

// saveFailed re-renders the form for input errors and fails the request
// for storage errors.
func (s *Service) saveFailed(c fiber.Ctx, sl *models.Slider, slide *models.Slide, form slideForm, err error) error {
	switch {
	case errors.Is(err, asset.ErrInvalidImage):
		return s.renderForm(c, sl, slide, form, s.str("errorimage"))
	case errors.Is(err, slider.ErrValidation):
		return s.renderForm(c, sl, slide, form, strings.Join(s.deps.Strings.ValidationMessages(err), " "))
	default:
		log.Error().Err(err).Uint64("slider", sl.ID).Msg("failed to save slide")
		return s.renderForm(c, sl, slide, form, s.str("errorsave"))
	}
}

func (s *Service) open(fh *multipart.FileHeader) (asset.File, func(), error) {
	if limit := s.deps.Cfg.Webserver.MaxUploadSize; limit > 0 && fh.Size > limit {
		return asset.File{}, nil, errors.New(s.str("errorimage"))
	}

	f, err := fh.Open()
	if err != nil {
		return asset.File{}, nil, errors.New(s.str("errorimage"))
	}

	closeFile := func() {
		if errClose := f.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close upload")
		}
	}

	return asset.File{Name: fh.Filename, Content: f}, closeFile, nil
}

func (s *Service) renderForm(c fiber.Ctx, sl *models.Slider, slide *models.Slide, form slideForm, errMsg string) error {
	title := s.str("new_slide")
	action := ListURL(sl.ID) + "/new"

	data := fiber.Map{
		"Slider":    sl,
		"Form":      form,
		"CancelURL": ListURL(sl.ID),
	}

	if slide != nil {
		title = s.str("edit_slide")
		action = ListURL(sl.ID) + "/edit"
		data["Slide"] = slide
		data["ImageURL"] = s.deps.Slides.Assets().URLFor(slider.ImageRef(slide))
	}

	data["Navigation"] = s.nav(sl, title)
	data["ActionURL"] = action

	if errMsg != "" {
		data["error"] = errMsg

		c.Status(fiber.StatusUnprocessableEntity)
	}

	return handler.Render(c, TemplateForm, data)
}
