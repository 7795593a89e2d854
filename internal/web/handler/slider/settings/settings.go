// Package settings serves the configuration form of a slider.
package settings

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/db/controller/sliderconfig"
	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/i18n"
	"github.com/GoSlider/GoSlider/internal/slider"
	"github.com/GoSlider/GoSlider/internal/web/handler"
	"github.com/GoSlider/GoSlider/internal/web/navigation"
)

const (
	// Path is the settings form of a slider.
	Path = "/slider/:id/settings"

	// TemplateName is the name of the settings template.
	TemplateName = "slider/settings"
)

// Option is a choice of a select field.
type Option struct {
	Value string
	Label string
}

// Service is the slider settings handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the slider settings handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.deps = deps

	app.Get(Path, auth.RequirePermission(deps.Auth, auth.PermSliderManage), s.Get)
	app.Post(Path, auth.RequirePermission(deps.Auth, auth.PermSliderManage), s.Post)

	return nil
}

// URL returns the settings form of a slider.
func URL(sliderID uint64) string {
	return "/slider/" + strconv.FormatUint(sliderID, 10) + "/settings"
}

func (s *Service) str(key string) string {
	return s.deps.Strings.GetString(key, i18n.DomainSlider)
}

// slider resolves the route slider. ok is false when a response was sent.
func (s *Service) loadSlider(c fiber.Ctx) (models.Slider, bool, error) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return models.Slider{}, false, handler.RedirectWithNotice(c, "/dashboard", handler.NoticeError, s.str("errorinvalidslider"))
	}

	sl, err := s.deps.Instances.Get(c.Context(), id)
	if errors.Is(err, slider.ErrNotFound) {
		return models.Slider{}, false, handler.RedirectWithNotice(c, "/dashboard", handler.NoticeError, s.str("errorinvalidslider"))
	}

	if err != nil {
		return models.Slider{}, false, err
	}

	return sl, true, nil
}

// Get renders the stored settings.
func (s *Service) Get(c fiber.Ctx) error {
	sl, ok, err := s.loadSlider(c)
	if !ok {
		return err
	}

	var cfg sliderconfig.Config
	if err = cfg.Load(s.deps.DB.WithContext(c.Context()), sl.ID); err != nil {
		return err
	}

	return s.render(c, &sl, &cfg, nil)
}

// Post validates and stores the settings.
func (s *Service) Post(c fiber.Ctx) error {
	sl, ok, err := s.loadSlider(c)
	if !ok {
		return err
	}

	if !handler.ValidSessKey(c) {
		return handler.RedirectWithNotice(c, URL(sl.ID), handler.NoticeError, s.str("errorsesskey"))
	}

	var cfg sliderconfig.Config
	if err = c.Bind().Form(&cfg); err != nil {
		log.Debug().Err(err).Msg("failed to parse slider settings")
		return s.render(c, &sl, &cfg, []string{s.deps.Strings.GetString("error", i18n.DomainCore)})
	}

	for _, v := range []*string{&cfg.Width, &cfg.Height, &cfg.Interval, &cfg.BxSpeed} {
		*v = strings.TrimSpace(*v)
	}

	if err = s.deps.Validate.Struct(&cfg); err != nil {
		return s.render(c, &sl, &cfg, s.deps.Strings.ValidationMessages(err))
	}

	if err = cfg.Save(s.deps.DB.WithContext(c.Context()), sl.ID); err != nil {
		log.Error().Err(err).Uint64("slider", sl.ID).Msg("failed to save slider settings")
		return err
	}

	log.Info().Uint64("slider", sl.ID).Str("driver", cfg.SliderJS).Msg("slider settings saved")

	return handler.RedirectWithNotice(c, URL(sl.ID), handler.NoticeSuccess, s.str("settings_saved"))
}

func (s *Service) render(c fiber.Ctx, sl *models.Slider, cfg *sliderconfig.Config, errs []string) error {
	title := s.str("settings")
	listURL := "/slider/" + strconv.FormatUint(sl.ID, 10) + "/manage"

	data := fiber.Map{
		"Navigation": navigation.NewContext(title, "sliders").
			AddBreadcrumb(s.deps.Strings.GetString("dashboard", i18n.DomainCore), "/dashboard", false).
			AddBreadcrumb(sl.Name, listURL, false).
			AddBreadcrumb(title, "", true),
		"Slider":    sl,
		"Config":    cfg,
		"ActionURL": URL(sl.ID),
		"CancelURL": listURL,
		"Drivers": []Option{
			{sliderconfig.DriverSlides, s.str("slider_js_slides")},
			{sliderconfig.DriverBxSlider, s.str("slider_js_bxslider")},
		},
		"Effects": []Option{
			{"fade", s.str("effect_fade")},
			{"slide", s.str("effect_slide")},
		},
	}

	if len(errs) > 0 {
		data["Errors"] = errs
		data["error"] = strings.Join(errs, " ")

		c.Status(fiber.StatusUnprocessableEntity)
	}

	return handler.Render(c, TemplateName, data)
}
