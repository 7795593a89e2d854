package slider

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSlider/GoSlider/internal/asset"
	"github.com/GoSlider/GoSlider/internal/db/models"
)

const (
	opList      = "list"
	opGet       = "get"
	opCreate    = "create"
	opUpdate    = "update"
	opDelete    = "delete"
	opDeleteAll = "delete_all"
	opCopyAll   = "copy_all"

	sliderQuery  = "slider_id = ?"
	orderClause  = "slide_order ASC, id ASC"
	imageColumn  = "slide_image"
	maxOrderExpr = "COALESCE(MAX(slide_order), 0)"
)

// Fields are the editable text fields of a slide. A nil Order appends the
// slide after the current last one on create and keeps the order on update.
type Fields struct {
	Order       *int
	Link        string `validate:"max=1333"`
	Title       string `validate:"max=255"`
	Description string
}

// Store persists slides and keeps their images in step.
type Store struct {
	db       *gorm.DB
	assets   asset.Binding
	validate *validator.Validate
}

// NewStore returns a store writing records to db and images to assets.
func NewStore(db *gorm.DB, assets asset.Binding) *Store {
	return &Store{
		db:       db,
		assets:   assets,
		validate: validator.New(),
	}
}

// Assets returns the asset binding the store writes to.
func (s *Store) Assets() asset.Binding {
	return s.assets
}

// ImageRef returns the asset reference of a slide.
func ImageRef(slide *models.Slide) asset.Ref {
	return asset.Ref{OwnerID: slide.ID, Filename: slide.Image}
}

// ListSlides returns the slides of a slider by order, then id. An unknown
// slider has no slides.
func (s *Store) ListSlides(ctx context.Context, sliderID uint64) ([]models.Slide, error) {
	var slides []models.Slide

	err := s.db.WithContext(ctx).Where(sliderQuery, sliderID).Order(orderClause).Find(&slides).Error
	if err != nil {
		err = fmt.Errorf("%w: list slides of slider %d: %w", ErrStorage, sliderID, err)
	}

	observe(opList, err)

	return slides, err
}

// GetSlide returns a single slide.
func (s *Store) GetSlide(ctx context.Context, id uint64) (models.Slide, error) {
	slide, err := s.get(s.db.WithContext(ctx), id)
	observe(opGet, err)

	return slide, err
}

func (s *Store) get(db *gorm.DB, id uint64) (models.Slide, error) {
	var slide models.Slide

	err := db.First(&slide, id).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.Slide{}, fmt.Errorf("%w: slide %d", ErrNotFound, id)
	case err != nil:
		return models.Slide{}, fmt.Errorf("%w: load slide %d: %w", ErrStorage, id, err)
	}

	return slide, nil
}

func (s *Store) check(f *Fields) error {
	if f.Order != nil && *f.Order < 0 {
		return fmt.Errorf("%w: order must not be negative", ErrValidation)
	}

	if err := s.validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// storageErr marks image validation failures as validation errors and
// leaves everything else as it is.
func storageErr(err error) error {
	if errors.Is(err, asset.ErrInvalidImage) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return err
}

func nextOrder(tx *gorm.DB, sliderID uint64) (int, error) {
	var highest int

	err := tx.Model(&models.Slide{}).Where(sliderQuery, sliderID).Select(maxOrderExpr).Scan(&highest).Error
	if err != nil {
		return 0, fmt.Errorf("%w: find last order: %w", ErrStorage, err)
	}

	return highest + 1, nil
}

// CreateSlide inserts a slide and stores its image in one transaction. If
// the image cannot be stored the record is rolled back; if the commit fails
// the stored image is removed again.
func (s *Store) CreateSlide(ctx context.Context, sliderID uint64, f Fields, file asset.File) (models.Slide, error) {
	slide, err := s.createSlide(ctx, sliderID, f, file)
	observe(opCreate, err)

	if err != nil {
		log.Warn().Err(err).Uint64("slider", sliderID).Msg("slide not created")
		return models.Slide{}, err
	}

	log.Info().Uint64("slider", sliderID).Uint64("slide", slide.ID).Msg("slide created")

	return slide, nil
}

func (s *Store) createSlide(ctx context.Context, sliderID uint64, f Fields, file asset.File) (models.Slide, error) {
	if err := s.check(&f); err != nil {
		return models.Slide{}, err
	}

	var (
		slide  models.Slide
		stored *asset.Ref
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order int

		if f.Order != nil {
			order = *f.Order
		} else {
			next, err := nextOrder(tx, sliderID)
			if err != nil {
				return err
			}

			order = next
		}

		slide = models.Slide{
			SliderID:    sliderID,
			Order:       order,
			Link:        f.Link,
			Title:       f.Title,
			Description: f.Description,
		}

		if err := tx.Create(&slide).Error; err != nil {
			return fmt.Errorf("%w: insert slide: %w", ErrStorage, err)
		}

		ref, err := s.assets.Store(ctx, slide.ID, file)
		if err != nil {
			return storageErr(err)
		}

		stored = &ref
		slide.Image = ref.Filename

		if err = tx.Model(&slide).Update(imageColumn, ref.Filename).Error; err != nil {
			return fmt.Errorf("%w: bind image: %w", ErrStorage, err)
		}

		return nil
	})
	if err != nil {
		if stored != nil {
			s.discard(ctx, *stored)
		}

		return models.Slide{}, err
	}

	return slide, nil
}

// UpdateSlide changes the text fields of a slide and, when file is given,
// replaces its image. The new image is stored before the record is saved;
// the old one is removed only after the save succeeded and only when the
// file name changed.
func (s *Store) UpdateSlide(ctx context.Context, id uint64, f Fields, file *asset.File) (models.Slide, error) {
	slide, err := s.updateSlide(ctx, id, f, file)
	observe(opUpdate, err)

	if err != nil {
		log.Warn().Err(err).Uint64("slide", id).Msg("slide not updated")
		return models.Slide{}, err
	}

	log.Info().Uint64("slide", id).Msg("slide updated")

	return slide, nil
}

func (s *Store) updateSlide(ctx context.Context, id uint64, f Fields, file *asset.File) (models.Slide, error) {
	if err := s.check(&f); err != nil {
		return models.Slide{}, err
	}

	db := s.db.WithContext(ctx)

	slide, err := s.get(db, id)
	if err != nil {
		return models.Slide{}, err
	}

	oldRef := ImageRef(&slide)

	var newRef *asset.Ref

	if file != nil {
		ref, err := s.assets.Store(ctx, slide.ID, *file)
		if err != nil {
			return models.Slide{}, storageErr(err)
		}

		newRef = &ref
		slide.Image = ref.Filename
	}

	if f.Order != nil {
		slide.Order = *f.Order
	}

	slide.Link = f.Link
	slide.Title = f.Title
	slide.Description = f.Description

	replaced := newRef != nil && newRef.Filename != oldRef.Filename

	if err = db.Save(&slide).Error; err != nil {
		if replaced {
			s.discard(ctx, *newRef)
		}

		return models.Slide{}, fmt.Errorf("%w: save slide %d: %w", ErrStorage, id, err)
	}

	if replaced {
		s.discard(ctx, oldRef)
	}

	return slide, nil
}

// DeleteSlide removes the record and its image. A failing image removal
// rolls the record deletion back. When the commit fails after the image is
// gone, the record is deleted again outside the transaction.
func (s *Store) DeleteSlide(ctx context.Context, id uint64) error {
	err := s.removeSlide(ctx, id)
	observe(opDelete, err)

	if err != nil {
		log.Warn().Err(err).Uint64("slide", id).Msg("slide not deleted")
		return err
	}

	log.Info().Uint64("slide", id).Msg("slide deleted")

	return nil
}

func (s *Store) removeSlide(ctx context.Context, id uint64) error {
	var imageGone bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slide, err := s.get(tx, id)
		if err != nil {
			return err
		}

		if err = tx.Delete(&slide).Error; err != nil {
			return fmt.Errorf("%w: delete slide %d: %w", ErrStorage, id, err)
		}

		if slide.Image != "" {
			if err = s.assets.Delete(ctx, ImageRef(&slide)); err != nil {
				return err
			}
		}

		imageGone = true

		return nil
	})
	if err == nil || !imageGone {
		return err
	}

	// only the commit failed; a record without its image must not stay
	errRetry := s.db.WithContext(ctx).Delete(&models.Slide{}, id).Error
	if errRetry != nil {
		log.Error().Err(errRetry).Uint64("slide", id).Msg("slide record left without image")
		return fmt.Errorf("%w: commit deletion of slide %d: %w", ErrStorage, id, errors.Join(err, errRetry))
	}

	log.Warn().Err(err).Uint64("slide", id).Msg("slide deleted after failed commit")

	return nil
}

// DeleteAllForSlider removes every slide of a slider. It keeps going past
// failing slides and returns all failures joined.
func (s *Store) DeleteAllForSlider(ctx context.Context, sliderID uint64) error {
	slides, err := s.ListSlides(ctx, sliderID)
	if err != nil {
		observe(opDeleteAll, err)
		return err
	}

	var errs []error

	for i := range slides {
		err = s.removeSlide(ctx, slides[i].ID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}

	err = errors.Join(errs...)
	observe(opDeleteAll, err)

	log.Info().Uint64("slider", sliderID).Int("slides", len(slides)).Int("failed", len(errs)).
		Msg("slides of slider deleted")

	return err
}

// CopyAllForSlider duplicates every slide of one slider onto another, each
// with its own copy of the image. Every slide is copied in its own
// transaction. Failures are collected and the successful copies returned.
func (s *Store) CopyAllForSlider(ctx context.Context, fromID, toID uint64) ([]models.Slide, error) {
	sources, err := s.ListSlides(ctx, fromID)
	if err != nil {
		observe(opCopyAll, err)
		return nil, err
	}

	var (
		copies = make([]models.Slide, 0, len(sources))
		errs   []error
	)

	for i := range sources {
		c, err := s.copySlide(ctx, &sources[i], toID)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		copies = append(copies, c)
	}

	err = errors.Join(errs...)
	observe(opCopyAll, err)

	log.Info().Uint64("from", fromID).Uint64("to", toID).Int("slides", len(copies)).Int("failed", len(errs)).
		Msg("slides copied")

	return copies, err
}

func (s *Store) copySlide(ctx context.Context, src *models.Slide, toID uint64) (models.Slide, error) {
	var (
		dup    models.Slide
		copied *asset.Ref
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup = models.Slide{
			SliderID:    toID,
			Order:       src.Order,
			Link:        src.Link,
			Title:       src.Title,
			Description: src.Description,
		}

		if err := tx.Create(&dup).Error; err != nil {
			return fmt.Errorf("%w: insert copy of slide %d: %w", ErrStorage, src.ID, err)
		}

		ref, err := s.assets.Copy(ctx, ImageRef(src), dup.ID)
		if err != nil {
			return err
		}

		copied = &ref
		dup.Image = ref.Filename

		if err = tx.Model(&dup).Update(imageColumn, ref.Filename).Error; err != nil {
			return fmt.Errorf("%w: bind copied image: %w", ErrStorage, err)
		}

		return nil
	})
	if err != nil {
		if copied != nil {
			s.discard(ctx, *copied)
		}

		return models.Slide{}, err
	}

	return dup, nil
}

// discard removes an image that is no longer referenced. Failures only get
// logged; the caller already has its result.
func (s *Store) discard(ctx context.Context, ref asset.Ref) {
	if err := s.assets.Delete(ctx, ref); err != nil {
		log.Error().Err(err).Uint64("owner", ref.OwnerID).Str("file", ref.Filename).Msg("orphaned image not removed")
	}
}
