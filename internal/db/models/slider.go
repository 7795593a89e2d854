package models

import "time"

// Slider is one placement of the slider block. It owns its slides and its
// configuration.
type Slider struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the gorm table name.
func (Slider) TableName() string {
	return "sliders"
}

// Slide is one image entry of a slider. Image holds the filename of the
// stored asset, which is keyed by the slide id.
type Slide struct {
	ID          uint64 `gorm:"primaryKey"`
	SliderID    uint64 `gorm:"column:slider_id;not null;index"`
	Order       int    `gorm:"column:slide_order;not null;default:0"`
	Link        string `gorm:"column:slide_link;size:1333"`
	Title       string `gorm:"column:slide_title;size:255"`
	Description string `gorm:"column:slide_desc;type:text"`
	Image       string `gorm:"column:slide_image;size:255;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the gorm table name.
func (Slide) TableName() string {
	return "slider_slides"
}
