package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoSlider/GoSlider/internal/web/sesskey"
	"github.com/GoSlider/GoSlider/internal/web/session"
)

// Render renders a page inside the base layout. The queued notices and the
// session token of the viewer are added to data.
func Render(c fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}

	if sess, id, err := session.Load(c); err == nil {
		data["SessKey"] = sess.SessKey

		if notices := sess.TakeNotices(); len(notices) > 0 {
			data["Notices"] = notices

			if err = sess.Save(id); err != nil {
				log.Error().Err(err).Msg("failed to save session")
			}
		}
	}

	return c.Render(name, data, BaseLayout)
}

// Notify queues a notice for the next rendered page.
func Notify(c fiber.Ctx, typ, message string) {
	sess, id, err := session.Load(c)
	if err != nil {
		return
	}

	sess.AddNotice(typ, message)

	if err = sess.Save(id); err != nil {
		log.Error().Err(err).Msg("failed to save session")
	}
}

// RedirectWithNotice queues a notice and redirects to location.
func RedirectWithNotice(c fiber.Ctx, location, typ, message string) error {
	Notify(c, typ, message)

	return c.Redirect().To(location)
}

// ValidSessKey reports whether the request carries the session token, as
// form value or query parameter.
func ValidSessKey(c fiber.Ctx) bool {
	sess, _, err := session.Load(c)
	if err != nil {
		return false
	}

	got := c.FormValue(sesskey.Param)
	if got == "" {
		got = c.Query(sesskey.Param)
	}

	return sesskey.Valid(sess.SessKey, got)
}

// CurrentUserID returns the id of the logged in user, 0 without session.
func CurrentUserID(c fiber.Ctx) uint64 {
	sess, _, err := session.Load(c)
	if err != nil {
		return 0
	}

	return sess.User.ID
}

// ParamID parses a positive numeric route parameter.
func ParamID(c fiber.Ctx, name string) (uint64, bool) {
	return ParseID(c.Params(name))
}

// ParseID parses a positive id.
func ParseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return id, true
}

// SessKey returns the session token of the viewer, empty without session.
func SessKey(c fiber.Ctx) string {
	sess, _, err := session.Load(c)
	if err != nil {
		return ""
	}

	return sess.SessKey
}
