package render

import (
	"strings"

	"github.com/GoSlider/GoSlider/internal/db/controller/sliderconfig"
)

// Driver is the client side carousel library a slider is rendered for.
type Driver int

const (
	// DriverSlidesJS is the jQuery SlidesJS plugin, the default.
	DriverSlidesJS Driver = iota
	// DriverBxSlider is the jQuery bxSlider plugin.
	DriverBxSlider
)

// Capabilities lists what a driver supports in markup.
type Capabilities struct {
	Captions   bool // caption block per slide
	NavArrows  bool // prev and next anchors next to the slides
	SlideClass string
	Module     string // name GoSlider.init dispatches on
}

var capabilities = map[Driver]Capabilities{ //nolint:gochecknoglobals
	DriverSlidesJS: {NavArrows: true, Module: "slides"},
	DriverBxSlider: {Captions: true, SlideClass: "bxslide", Module: "bxslider"},
}

// ParseDriver maps the slider_js setting to a driver. Anything but
// "bxslider" selects SlidesJS.
func ParseDriver(v string) Driver {
	if strings.TrimSpace(v) == sliderconfig.DriverBxSlider {
		return DriverBxSlider
	}

	return DriverSlidesJS
}

// Capabilities returns the capability table entry of d.
func (d Driver) Capabilities() Capabilities {
	return capabilities[d]
}

func (d Driver) String() string {
	return d.Capabilities().Module
}
