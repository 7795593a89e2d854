// Package logout ends the browser session.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/GoSlider/GoSlider/internal/web/handler"
	"github.com/GoSlider/GoSlider/internal/web/handler/login"
)

// Path is the logout route. It is reachable without a session.
const Path = handler.RootPath + "logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Cfg == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.deps = deps

	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)

	return nil
}

// Logout deletes the session and clears the cookie. Sessions started by
// an oidc login continue at the provider's end session endpoint.
func (s *Service) Logout(c fiber.Ctx) error {
	idToken := handler.EndSession(c, s.deps.Cfg)

	if idToken != "" && s.deps.OIDC != nil {
		if logoutURL := s.deps.OIDC.GetLogoutURL(idToken, s.deps.Cfg.Webserver.URL); logoutURL != "" {
			return c.Redirect().To(logoutURL)
		}
	}

	return c.Redirect().To(login.Path)
}
