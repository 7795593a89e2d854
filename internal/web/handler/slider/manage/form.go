package manage

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/slider"
)

// errInvalidOrder is returned for an order that is not a whole number of 0 or more.
var errInvalidOrder = errors.New("invalid order")

// slideForm holds the submitted text fields as entered.
type slideForm struct {
	Slide       string
	Order       string
	Link        string
	Title       string
	Description string
}

func readForm(c fiber.Ctx) slideForm {
	return slideForm{
		Slide:       c.FormValue("slide"),
		Order:       strings.TrimSpace(c.FormValue("slide_order")),
		Link:        strings.TrimSpace(c.FormValue("slide_link")),
		Title:       strings.TrimSpace(c.FormValue("slide_title")),
		Description: c.FormValue("slide_desc"),
	}
}

func formOf(slide *models.Slide) slideForm {
	return slideForm{
		Slide:       strconv.FormatUint(slide.ID, 10),
		Order:       strconv.Itoa(slide.Order),
		Link:        slide.Link,
		Title:       slide.Title,
		Description: slide.Description,
	}
}

// fields converts the form for the store. An empty order is left to the
// store.
func (f *slideForm) fields() (slider.Fields, error) {
	out := slider.Fields{
		Link:        f.Link,
		Title:       f.Title,
		Description: f.Description,
	}

	if f.Order == "" {
		return out, nil
	}

	order, err := strconv.Atoi(f.Order)
	if err != nil || order < 0 {
		return slider.Fields{}, errInvalidOrder
	}

	out.Order = &order

	return out, nil
}
