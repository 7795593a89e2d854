package slider

import (
	"errors"

	"github.com/GoSlider/GoSlider/internal/asset"
)

var (
	// ErrNotFound is returned for a slide or slider id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for input the store refuses.
	ErrValidation = errors.New("validation failed")

	// ErrStorage is returned when the database or the asset storage fails.
	ErrStorage = asset.ErrStorage

	// ErrPermissionDenied is returned by the web layer when the viewer may not manage a slider.
	ErrPermissionDenied = errors.New("permission denied")
)
