// Package login renders the login page and authenticates users against the
// local database or an LDAP directory.
package login

import (
	"errors"

	"github.com/go-ldap/ldap/v3"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/config"
	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/web/handler"
	"github.com/GoSlider/GoSlider/internal/web/handler/dashboard"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// TemplateName is the name of the login template.
	TemplateName = "login"

	authLocal = "local"
	authLDAP  = "ldap"
)

// Form is the submitted login form.
type Form struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	AuthType string `form:"auth_type" json:"auth_type"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	deps      *handler.Deps
	localAuth *auth.LocalProvider
	ldapAuth  *auth.LDAPProvider
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Cfg == nil || deps.DB == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.deps = deps
	s.cfg = deps.Cfg
	s.localAuth = auth.NewLocalProvider(deps.DB)
	s.ldapAuth = deps.LDAP

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

func (s *Service) page(errMsg string) fiber.Map {
	m := fiber.Map{
		"local_db_enabled": s.cfg.Auth.LocalDB.Enabled,
		"ldap_enabled":     s.cfg.Auth.LDAP.Enabled && s.ldapAuth != nil,
		"oidc_enabled":     s.cfg.Auth.OIDC.Enabled && s.deps.OIDC != nil,
	}

	if errMsg != "" {
		m["error"] = errMsg
	}

	return m
}

// Get handles the login page rendering.
func (s *Service) Get(c fiber.Ctx) error {
	return handler.Render(c, TemplateName, s.page(""))
}

// Post handles the login form submission.
func (s *Service) Post(c fiber.Ctx) error {
	form := new(Form)

	if err := c.Bind().Body(form); err != nil {
		log.Debug().Err(err).Msg("failed to parse login form")
		return handler.Render(c, TemplateName, s.page(ErrInvalidFormData.Error()))
	}

	authType, err := s.pickAuthType(form.AuthType)
	if err != nil {
		return handler.Render(c, TemplateName, s.page(err.Error()))
	}

	user, err := s.authenticate(authType, form.Username, form.Password)
	if err != nil {
		log.Info().Err(err).Str("username", form.Username).Str("auth_type", authType).Msg("login failed")
		return handler.Render(c, TemplateName, s.page(err.Error()))
	}

	if err = handler.StartSession(c, s.cfg, user, ""); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return handler.Render(c, TemplateName, s.page(ErrInternalServerError.Error()))
	}

	log.Info().Str("username", user.Username).Str("auth_type", authType).Msg("user logged in")

	return c.Redirect().To(dashboard.Path)
}

// pickAuthType resolves the requested method against the configuration.
// Without a request the local database wins over LDAP.
func (s *Service) pickAuthType(requested string) (string, error) {
	switch requested {
	case "":
		switch {
		case s.cfg.Auth.LocalDB.Enabled:
			return authLocal, nil
		case s.cfg.Auth.LDAP.Enabled:
			return authLDAP, nil
		default:
			return "", ErrNoAuthMethod
		}
	case authLocal:
		if !s.cfg.Auth.LocalDB.Enabled {
			return "", ErrLocalAuthDisabled
		}

		return authLocal, nil
	case authLDAP:
		if !s.cfg.Auth.LDAP.Enabled || s.ldapAuth == nil {
			return "", ErrLDAPAuthDisabled
		}

		return authLDAP, nil
	default:
		return "", ErrInvalidAuthMethod
	}
}

// authenticate checks the credentials with the given method.
func (s *Service) authenticate(authType, username, password string) (*models.User, error) {
	switch authType {
	case authLocal:
		user, err := s.localAuth.Authenticate(username, password)

		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
			return nil, ErrInvalidCredentials
		case errors.Is(err, auth.ErrUserAccountDisabled):
			return nil, auth.ErrUserAccountDisabled
		default:
			log.Error().Err(err).Msg("local authentication failed")
			return nil, ErrInternalServerError
		}
	case authLDAP:
		return s.authenticateLDAP(username, password)
	default:
		return nil, ErrInvalidAuthMethod
	}
}

func (s *Service) authenticateLDAP(username, password string) (*models.User, error) {
	if s.ldapAuth == nil {
		return nil, ErrLDAPAuthDisabled
	}

	if password == "" {
		return nil, ErrInvalidCredentials
	}

	user, groups, err := s.ldapAuth.Authenticate(username, password)

	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrMultipleUsersFound),
		ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials):
		return nil, ErrInvalidCredentials
	default:
		log.Error().Err(err).Msg("ldap authentication failed")
		return nil, ErrInternalServerError
	}

	if !user.Active {
		return nil, auth.ErrUserAccountDisabled
	}

	if err = s.deps.Auth.SyncUserGroups(user.ID, groups, models.GroupSourceLDAP); err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to sync ldap groups")
	}

	return user, nil
}
