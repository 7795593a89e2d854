// Package view renders slider blocks on a public page.
package view

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoSlider/GoSlider/internal/db/controller/sliderconfig"
	"github.com/GoSlider/GoSlider/internal/i18n"
	"github.com/GoSlider/GoSlider/internal/render"
	"github.com/GoSlider/GoSlider/internal/slider"
	"github.com/GoSlider/GoSlider/internal/web/handler"
	"github.com/GoSlider/GoSlider/internal/web/navigation"
)

const (
	// Path is the public page of a slider.
	Path = "/slider/:id"

	// AlsoParam lists further slider ids rendered on the same page.
	AlsoParam = "also"

	// TemplateName is the name of the view template.
	TemplateName = "slider/view"

	maxBlocks = 10
)

// Block is one rendered slider on the page.
type Block struct {
	ID    uint64
	Title string
	render.Result
}

// Service is the slider view handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the slider view handler.
var Handler = Service{}

// Init registers the route.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.deps = deps

	app.Get(Path, s.Get)

	return nil
}

// ids returns the slider of the route followed by the ones in AlsoParam,
// without duplicates.
func ids(c fiber.Ctx) ([]uint64, bool) {
	first, ok := handler.ParamID(c, "id")
	if !ok {
		return nil, false
	}

	out := []uint64{first}
	seen := map[uint64]bool{first: true}

	for _, raw := range strings.Split(c.Query(AlsoParam), ",") {
		id, ok := handler.ParseID(strings.TrimSpace(raw))
		if !ok || seen[id] || len(out) == maxBlocks {
			continue
		}

		seen[id] = true
		out = append(out, id)
	}

	return out, true
}

// Get renders the blocks. One render context numbers all blocks of the
// page, so the same slider may appear twice with distinct element ids.
func (s *Service) Get(c fiber.Ctx) error {
	sliderIDs, ok := ids(c)
	if !ok {
		return fiber.ErrNotFound
	}

	var (
		rc     = render.NewContext()
		userID = handler.CurrentUserID(c)
		blocks = make([]Block, 0, len(sliderIDs))
	)

	for _, id := range sliderIDs {
		b, err := s.block(c, rc, userID, id)
		if errors.Is(err, slider.ErrNotFound) {
			if id == sliderIDs[0] {
				return fiber.ErrNotFound
			}

			continue
		}

		if err != nil {
			return err
		}

		blocks = append(blocks, b)
	}

	title := blocks[0].Title

	return handler.Render(c, TemplateName, fiber.Map{
		"Navigation": navigation.NewContext(title, "sliders").
			AddBreadcrumb(s.deps.Strings.GetString("home", i18n.DomainCore), "/", false).
			AddBreadcrumb(title, "", true),
		"Blocks": blocks,
	})
}

func (s *Service) block(c fiber.Ctx, rc *render.Context, userID, id uint64) (Block, error) {
	ctx := c.Context()

	sl, err := s.deps.Instances.Get(ctx, id)
	if err != nil {
		return Block{}, err
	}

	var cfg sliderconfig.Config
	if err = cfg.Load(s.deps.DB.WithContext(ctx), id); err != nil {
		return Block{}, err
	}

	slides, err := s.deps.Slides.ListSlides(ctx, id)
	if err != nil {
		return Block{}, err
	}

	canManage := false

	if userID != 0 {
		if canManage, err = s.deps.Auth.HasManageCapability(userID, id); err != nil {
			log.Error().Err(err).Uint64("slider", id).Msg("failed to check manage capability")
			canManage = false
		}
	}

	res, err := s.deps.Renderer.Render(rc, &render.Block{
		InstanceID: id,
		Config:     cfg,
		Slides:     slides,
		CanManage:  canManage,
		ManageURL:  "/slider/" + strconv.FormatUint(id, 10) + "/manage",
	})
	if err != nil {
		return Block{}, err
	}

	return Block{ID: id, Title: sl.Name, Result: res}, nil
}
