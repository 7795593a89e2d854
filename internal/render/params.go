package render

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/GoSlider/GoSlider/internal/db/controller/sliderconfig"
)

// Defaults for missing, non numeric or non positive settings.
const (
	DefaultWidth    = 940
	DefaultHeight   = 528
	DefaultInterval = 5000
	DefaultEffect   = "fade"
	DefaultBxSpeed  = 500
)

// Params are the settings of a slider resolved to typed values.
type Params struct {
	Driver      Driver
	Text        string
	Width       int
	Height      int
	Interval    int
	BxSpeed     int
	Effect      string
	Autoplay    bool
	Pagination  bool
	Navigation  bool
	Captions    bool
	DisplayDesc bool
	HideOnHover bool
}

// ParamsFrom resolves the stored settings, falling back to the defaults
// field by field.
func ParamsFrom(cfg *sliderconfig.Config) Params {
	effect := strings.TrimSpace(cfg.Effect)
	if effect == "" {
		effect = DefaultEffect
	}

	return Params{
		Driver:      ParseDriver(cfg.SliderJS),
		Text:        cfg.Text,
		Width:       positive(cfg.Width, DefaultWidth),
		Height:      positive(cfg.Height, DefaultHeight),
		Interval:    positive(cfg.Interval, DefaultInterval),
		BxSpeed:     positive(cfg.BxSpeed, DefaultBxSpeed),
		Effect:      effect,
		Autoplay:    cfg.Autoplay,
		Pagination:  cfg.Pagination,
		Navigation:  cfg.Navigation,
		Captions:    cfg.BxCaptions,
		DisplayDesc: cfg.BxDisplayDesc,
		HideOnHover: cfg.BxHideOnHover,
	}
}

// positive parses raw as a number and truncates it. Unparsable, non
// positive and out of range values yield def.
func positive(raw string, def int) int {
	f, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil || math.IsNaN(f) || f < 1 || f > math.MaxInt32 {
		return def
	}

	return int(f)
}
