package auth

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoSlider/GoSlider/internal/web/session"
)

const (
	// LoginPath is where unauthenticated requests are sent.
	LoginPath = "/login"

	// HomePath is where logged in users land.
	HomePath = "/dashboard"
)

// publicPrefixes are served without a session.
var publicPrefixes = []string{
	"/static",
	"/assets",
	"/logout",
	"/auth/oidc",
	"/healthz",
}

// Middleware is a Fiber middleware that checks for user authentication.
func Middleware(c fiber.Ctx) error {
	if IsPublic(c) {
		// render the current user on public pages when there is one
		if sessData, _, err := session.Load(c); err == nil {
			c.Locals("CurrentUser", sessData.User)
		}

		return c.Next()
	}

	isLoginPage := IsLoginPage(c)

	sessData, _, err := session.Load(c)
	if err != nil {
		// already on the login page, a redirect would loop
		if isLoginPage {
			return c.Next()
		}

		log.Debug().Err(err).Str("path", c.Path()).Msg("redirecting to login")

		return c.Redirect().To(LoginPath)
	}

	c.Locals("CurrentUser", sessData.User)

	if isLoginPage {
		return c.Redirect().To(HomePath)
	}

	return c.Next()
}

// IsPublic reports whether the request path needs no session.
func IsPublic(c fiber.Ctx) bool {
	p := strings.ToLower(c.Path())
	for _, prefix := range publicPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}

	return isSliderView(p)
}

// isSliderView matches the rendered block at /slider/<id>. The management
// pages below it need a session.
func isSliderView(p string) bool {
	id, ok := strings.CutPrefix(p, "/slider/")
	if !ok || id == "" {
		return false
	}

	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c fiber.Ctx) bool {
	p := strings.ToLower(c.Path())
	return p == LoginPath || strings.HasPrefix(p, LoginPath+"/")
}
