package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/config"
	"github.com/GoSlider/GoSlider/internal/i18n"
	"github.com/GoSlider/GoSlider/internal/render"
	"github.com/GoSlider/GoSlider/internal/slider"
)

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Cfg       *config.Config
	DB        *gorm.DB
	Auth      *auth.Service
	LDAP      *auth.LDAPProvider // nil unless ldap login is enabled
	OIDC      *auth.OIDCProvider // nil unless oidc login is enabled
	Slides    *slider.Store
	Instances *slider.Instances
	Renderer  *render.Renderer
	Strings   *i18n.Catalog
	Validate  *validator.Validate

	// LocalAssetRoot is the image directory served below /assets. It is
	// empty when images live in a bucket.
	LocalAssetRoot string
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
