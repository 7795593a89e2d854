package slider

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSlider/GoSlider/internal/db/controller/sliderconfig"
)

// Lifecycle holds the hooks the host calls at the lifecycle points of a
// slider instance.
type Lifecycle struct {
	db    *gorm.DB
	store *Store
}

// NewLifecycle returns the hooks for the slides in store and the settings in db.
func NewLifecycle(db *gorm.DB, store *Store) *Lifecycle {
	return &Lifecycle{db: db, store: store}
}

// OnCreate stores the default settings of a new instance.
func (l *Lifecycle) OnCreate(ctx context.Context, sliderID uint64) error {
	cfg := sliderconfig.Config{
		SliderJS:   sliderconfig.DriverSlides,
		Autoplay:   true,
		Pagination: true,
		Navigation: true,
	}

	if err := cfg.Save(l.db.WithContext(ctx), sliderID); err != nil {
		return fmt.Errorf("%w: save default settings of slider %d: %w", ErrStorage, sliderID, err)
	}

	log.Debug().Uint64("slider", sliderID).Msg("slider created")

	return nil
}

// OnDelete removes every slide, its image and the settings of an instance.
// All parts are attempted; the failures are returned joined.
func (l *Lifecycle) OnDelete(ctx context.Context, sliderID uint64) error {
	errSlides := l.store.DeleteAllForSlider(ctx, sliderID)

	errConfig := sliderconfig.Delete(l.db.WithContext(ctx), sliderID)
	if errConfig != nil {
		errConfig = fmt.Errorf("%w: delete settings of slider %d: %w", ErrStorage, sliderID, errConfig)
	}

	err := errors.Join(errSlides, errConfig)
	if err != nil {
		log.Error().Err(err).Uint64("slider", sliderID).Msg("slider not fully deleted")
	}

	return err
}

// OnCopy gives the instance toID a copy of the slides and the settings of fromID.
func (l *Lifecycle) OnCopy(ctx context.Context, fromID, toID uint64) error {
	if err := sliderconfig.Copy(l.db.WithContext(ctx), fromID, toID); err != nil {
		return fmt.Errorf("%w: copy settings of slider %d: %w", ErrStorage, fromID, err)
	}

	if _, err := l.store.CopyAllForSlider(ctx, fromID, toID); err != nil {
		return err
	}

	log.Debug().Uint64("from", fromID).Uint64("to", toID).Msg("slider copied")

	return nil
}
