package slider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSlider/GoSlider/internal/db/models"
)

// Instance is a slider with the number of its slides.
type Instance struct {
	ID         uint64
	Name       string
	SlideCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Instances creates, copies and deletes slider records and calls the
// lifecycle hooks for them.
type Instances struct {
	db        *gorm.DB
	lifecycle *Lifecycle
}

// NewInstances returns the instance registry.
func NewInstances(db *gorm.DB, lifecycle *Lifecycle) *Instances {
	return &Instances{db: db, lifecycle: lifecycle}
}

func cleanInstanceName(name string) (string, error) {
	name = strings.TrimSpace(name)

	switch {
	case name == "":
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	case len(name) > 255:
		return "", fmt.Errorf("%w: name is longer than 255 characters", ErrValidation)
	}

	return name, nil
}

// Get returns one slider.
func (i *Instances) Get(ctx context.Context, id uint64) (models.Slider, error) {
	var s models.Slider

	err := i.db.WithContext(ctx).First(&s, id).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.Slider{}, fmt.Errorf("%w: slider %d", ErrNotFound, id)
	case err != nil:
		return models.Slider{}, fmt.Errorf("%w: load slider %d: %w", ErrStorage, id, err)
	}

	return s, nil
}

// List returns all sliders with their slide counts, by id.
func (i *Instances) List(ctx context.Context) ([]Instance, error) {
	var rows []Instance

	err := i.db.WithContext(ctx).
		Model(&models.Slider{}).
		Select("sliders.id, sliders.name, sliders.created_at, sliders.updated_at, COUNT(slider_slides.id) AS slide_count").
		Joins("LEFT JOIN slider_slides ON slider_slides.slider_id = sliders.id").
		Group("sliders.id, sliders.name, sliders.created_at, sliders.updated_at").
		Order("sliders.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list sliders: %w", ErrStorage, err)
	}

	return rows, nil
}

// Create adds a slider and runs OnCreate. The record is removed again when
// the hook fails.
func (i *Instances) Create(ctx context.Context, name string) (models.Slider, error) {
	name, err := cleanInstanceName(name)
	if err != nil {
		return models.Slider{}, err
	}

	s := models.Slider{Name: name}

	if err = i.db.WithContext(ctx).Create(&s).Error; err != nil {
		return models.Slider{}, fmt.Errorf("%w: insert slider: %w", ErrStorage, err)
	}

	if err = i.lifecycle.OnCreate(ctx, s.ID); err != nil {
		if errUndo := i.db.WithContext(ctx).Delete(&s).Error; errUndo != nil {
			log.Error().Err(errUndo).Uint64("slider", s.ID).Msg("slider without settings left behind")
			err = errors.Join(err, fmt.Errorf("%w: remove slider %d: %w", ErrStorage, s.ID, errUndo))
		}

		return models.Slider{}, err
	}

	log.Info().Uint64("slider", s.ID).Str("name", s.Name).Msg("slider instance created")

	return s, nil
}

// Copy creates a new slider named name and runs OnCopy from the source.
// A partially failed copy keeps the new slider and returns the error.
func (i *Instances) Copy(ctx context.Context, fromID uint64, name string) (models.Slider, error) {
	src, err := i.Get(ctx, fromID)
	if err != nil {
		return models.Slider{}, err
	}

	if strings.TrimSpace(name) == "" {
		name = src.Name + " (copy)"
	}

	name, err = cleanInstanceName(name)
	if err != nil {
		return models.Slider{}, err
	}

	dst := models.Slider{Name: name}

	if err = i.db.WithContext(ctx).Create(&dst).Error; err != nil {
		return models.Slider{}, fmt.Errorf("%w: insert slider: %w", ErrStorage, err)
	}

	if err = i.lifecycle.OnCopy(ctx, src.ID, dst.ID); err != nil {
		return dst, err
	}

	log.Info().Uint64("from", src.ID).Uint64("slider", dst.ID).Msg("slider instance copied")

	return dst, nil
}

// Delete runs OnDelete and removes the slider. The record stays when the
// hook fails so the deletion can be retried.
func (i *Instances) Delete(ctx context.Context, id uint64) error {
	s, err := i.Get(ctx, id)
	if err != nil {
		return err
	}

	if err = i.lifecycle.OnDelete(ctx, s.ID); err != nil {
		return err
	}

	if err = i.db.WithContext(ctx).Delete(&s).Error; err != nil {
		return fmt.Errorf("%w: delete slider %d: %w", ErrStorage, id, err)
	}

	log.Info().Uint64("slider", id).Msg("slider instance deleted")

	return nil
}
