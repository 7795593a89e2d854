// Package sliderconfig persists the per instance slider settings as a JSON
// blob in the settings table.
package sliderconfig

import (
	"errors"
	"strconv"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/GoSlider/GoSlider/internal/db/controller/setting"
)

// SettingKeyPrefix is followed by the slider id.
const SettingKeyPrefix = "slider_config_"

// Driver values of Config.SliderJS.
const (
	DriverSlides   = "slides"
	DriverBxSlider = "bxslider"
)

// Config holds the settings of one slider instance. Numbers are kept as the
// raw strings the form delivered; the renderer falls back to defaults for
// anything that is not a positive number.
type Config struct {
	Text          string `form:"text"           json:"text"`
	SliderJS      string `form:"slider_js"      json:"slider_js"      validate:"omitempty,oneof=slides bxslider"`
	Width         string `form:"width"          json:"width"          validate:"omitempty,numeric"`
	Height        string `form:"height"         json:"height"         validate:"omitempty,numeric"`
	Interval      string `form:"interval"       json:"interval"       validate:"omitempty,numeric"`
	Effect        string `form:"effect"         json:"effect"         validate:"omitempty,oneof=fade slide"`
	BxSpeed       string `form:"bx_speed"       json:"bx_speed"       validate:"omitempty,numeric"`
	Autoplay      bool   `form:"autoplay"       json:"autoplay"`
	Pagination    bool   `form:"pagination"     json:"pagination"`
	Navigation    bool   `form:"navigation"     json:"navigation"`
	BxCaptions    bool   `form:"bx_captions"    json:"bx_captions"`
	BxDisplayDesc bool   `form:"bx_displaydesc" json:"bx_displaydesc"`
	BxHideOnHover bool   `form:"bx_hideonhover" json:"bx_hideonhover"`
}

// Key returns the setting name for a slider.
func Key(sliderID uint64) string {
	return SettingKeyPrefix + strconv.FormatUint(sliderID, 10)
}

// Load reads the settings of a slider. A slider without stored settings
// yields the zero Config.
func (c *Config) Load(db *gorm.DB, sliderID uint64) error {
	s, err := setting.Get(db, Key(sliderID))
	if errors.Is(err, setting.ErrSettingNotFound) {
		*c = Config{}
		return nil
	}

	if err != nil {
		return err
	}

	return json.Unmarshal(s.Value, c)
}

// Save stores the settings of a slider.
func (c *Config) Save(db *gorm.DB, sliderID uint64) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	_, err = setting.Set(db, Key(sliderID), data)

	return err
}

// Delete removes the stored settings. Missing settings are not an error.
func Delete(db *gorm.DB, sliderID uint64) error {
	err := setting.DeleteByName(db, Key(sliderID))
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil
	}

	return err
}

// Copy duplicates the settings of one slider onto another.
func Copy(db *gorm.DB, fromID, toID uint64) error {
	var cfg Config
	if err := cfg.Load(db, fromID); err != nil {
		return err
	}

	return cfg.Save(db, toID)
}
