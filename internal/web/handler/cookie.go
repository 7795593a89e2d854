package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoSlider/GoSlider/internal/config"
	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/web/session"
)

// StartSession stores a new session for user and sets the session cookie.
// idToken is kept for the oidc end session request and may be empty.
func StartSession(c fiber.Ctx, cfg *config.Config, user *models.User, idToken string) error {
	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return err
	}

	sess := session.New(user, cfg.Webserver.Session.ExpiryTime)
	sess.IDToken = idToken

	if err = sess.Save(sessionID); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   !cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return nil
}

// EndSession removes the session of the request and clears the cookie. It
// returns the oidc id token of the removed session, if any.
func EndSession(c fiber.Ctx, cfg *config.Config) string {
	var idToken string

	if sess, id, err := session.Load(c); err == nil {
		idToken = sess.IDToken

		if err = session.Delete(id); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   !cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return idToken
}
