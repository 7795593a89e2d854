package oidc

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/web/handler"
	"github.com/GoSlider/GoSlider/internal/web/handler/dashboard"
)

const (
	// LoginPath is the path to initiate OIDC login.
	LoginPath = handler.RootPath + "auth/oidc/login"

	// CallbackPath is the path for OIDC callback.
	CallbackPath = handler.RootPath + "auth/oidc/callback"

	stateTTL = 5 * time.Minute
)

// Service is the OIDC handler service.
type Service struct {
	handler.Service
	deps *handler.Deps

	mu     sync.Mutex
	states map[string]time.Time
}

// Handler is the OIDC handler.
var Handler = Service{}

// Init registers the routes when an oidc provider is configured.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Cfg == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.deps = deps
	s.states = make(map[string]time.Time)

	if deps.OIDC == nil {
		return nil
	}

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)

	return nil
}

// putState stores a state token and drops the expired ones.
func (s *Service) putState(state string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}

	s.states[state] = now.Add(stateTTL)
}

// takeState reports whether state was issued and has not expired. A state
// is accepted once.
func (s *Service) takeState(state string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.states[state]
	delete(s.states, state)

	return ok && !now.After(exp)
}

// Login initiates the OIDC login flow.
func (s *Service) Login(c fiber.Ctx) error {
	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate state token")
		return fiber.ErrInternalServerError
	}

	s.putState(state, time.Now())

	return c.Redirect().To(s.deps.OIDC.GetAuthURL(state))
}

// Callback handles the OIDC callback.
func (s *Service) Callback(c fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		log.Error().Msg("missing code or state in oidc callback")
		return fiber.NewError(fiber.StatusBadRequest, "Invalid callback parameters")
	}

	if !s.takeState(state, time.Now()) {
		log.Error().Str("state", state).Msg("invalid or expired state token")
		return fiber.NewError(fiber.StatusBadRequest, "Invalid state token")
	}

	res, err := s.deps.OIDC.HandleCallback(c.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("oidc authentication failed")
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication failed")
	}

	if !res.User.Active {
		return fiber.NewError(fiber.StatusForbidden, auth.ErrUserAccountDisabled.Error())
	}

	if len(res.Groups) > 0 {
		if err = s.deps.Auth.SyncUserGroups(res.User.ID, res.Groups, models.GroupSourceOIDC); err != nil {
			log.Error().Err(err).Uint64("user_id", res.User.ID).Msg("failed to sync oidc groups")
		}
	}

	if err = handler.StartSession(c, s.deps.Cfg, res.User, res.IDToken); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return fiber.ErrInternalServerError
	}

	log.Info().Str("username", res.User.Username).Msg("user logged in via oidc")

	return c.Redirect().To(dashboard.Path)
}
