package render

import (
	"github.com/goccy/go-json"

	"github.com/GoSlider/GoSlider/internal/db/models"
)

// BxSettings is the option object handed to bxSlider.
type BxSettings struct {
	Selector        string `json:"selector"`
	Mode            string `json:"mode"`
	Speed           int    `json:"speed"`
	Pause           int    `json:"pause"`
	Auto            bool   `json:"auto"`
	AutoHover       bool   `json:"autoHover"`
	Pager           bool   `json:"pager"`
	Controls        bool   `json:"controls"`
	InfiniteLoop    bool   `json:"infiniteLoop"`
	AdaptiveHeight  bool   `json:"adaptiveHeight"`
	TouchEnabled    bool   `json:"touchEnabled"`
	SlideWidth      int    `json:"slideWidth"`
	StopAutoOnClick bool   `json:"stopAutoOnClick"`
}

// InitPayload is the call the page makes to start a carousel.
type InitPayload struct {
	Module string
	Args   any
}

// BuildInitPayload returns the initialisation call for the driver.
func BuildInitPayload(driver Driver, p *Params, slides []models.Slide, uid string) InitPayload {
	if driver == DriverBxSlider {
		return InitPayload{Module: driver.String(), Args: bxSettings(p, len(slides), uid)}
	}

	return InitPayload{Module: driver.String(), Args: slidesArgs(p, uid)}
}

func bxSettings(p *Params, count int, uid string) BxSettings {
	mode := "horizontal"
	if p.Effect == DefaultEffect {
		mode = DefaultEffect
	}

	return BxSettings{
		Selector:        ".bxslider" + uid,
		Mode:            mode,
		Speed:           p.BxSpeed,
		Pause:           p.Interval,
		Auto:            p.Autoplay,
		AutoHover:       true,
		Pager:           p.Pagination,
		Controls:        p.Navigation,
		InfiniteLoop:    count > 1,
		AdaptiveHeight:  true,
		TouchEnabled:    count > 1,
		SlideWidth:      p.Width,
		StopAutoOnClick: true,
	}
}

// slidesArgs is the positional argument list of the SlidesJS module.
func slidesArgs(p *Params, uid string) []any {
	return []any{p.Width, p.Height, p.Effect, p.Interval, p.Autoplay, p.Pagination, p.Navigation, uid}
}

// Script returns the javascript statement running the payload. The JSON
// encoder escapes <, > and & so the result is safe inside a script element.
func (p InitPayload) Script() (string, error) {
	module, err := json.Marshal(p.Module)
	if err != nil {
		return "", err
	}

	args, err := json.Marshal(p.Args)
	if err != nil {
		return "", err
	}

	return "GoSlider.init(" + string(module) + ", " + string(args) + ");", nil
}
