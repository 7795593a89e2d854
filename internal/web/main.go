// Package web assembles the fiber application: templates, static files,
// the image assets, middleware and the handlers.
package web

import (
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/gofiber/template/html/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/GoSlider/GoSlider/internal/auth"
	fiberlogger "github.com/GoSlider/GoSlider/internal/logger/adapter/fiber"
	"github.com/GoSlider/GoSlider/internal/web/handler"
	oidchandler "github.com/GoSlider/GoSlider/internal/web/handler/auth/oidc"
	"github.com/GoSlider/GoSlider/internal/web/handler/dashboard"
	"github.com/GoSlider/GoSlider/internal/web/handler/login"
	"github.com/GoSlider/GoSlider/internal/web/handler/logout"
	"github.com/GoSlider/GoSlider/internal/web/handler/slider/manage"
	"github.com/GoSlider/GoSlider/internal/web/handler/slider/settings"
	"github.com/GoSlider/GoSlider/internal/web/handler/slider/view"
	authmw "github.com/GoSlider/GoSlider/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic.
	CheckAlivePath = "/healthz"

	// AssetsPath serves the slide images of the local backend.
	AssetsPath = "/assets"

	defaultMetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	deps         *handler.Deps
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	s.alive.Store(true)

	go func() {
		if err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and stops the server.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.deps.Cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.deps.Cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// checkAlive answers the load balancer probe.
func (s *Service) checkAlive(c fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("ok")
}

// templateEngine returns the embedded templates, or the working tree
// templates reloaded on every request in dev mode.
func templateEngine(deps *handler.Deps) *html.Engine {
	engine := html.NewFileSystem(http.FS(templateEmbedFS{embeddedTemplates}), ".gohtml")

	if deps.Cfg.DevMode {
		engine = html.New("./internal/web/templates", ".gohtml")
		engine.Reload(true)

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	engine.AddFunc("iterate", func(count int) []int {
		result := make([]int, count)
		for i := range result {
			result[i] = i
		}

		return result
	})
	engine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	engine.AddFunc("sub", func(a, b int) int {
		return a - b
	})
	engine.AddFunc("str", func(key, domain string, params ...string) string {
		return deps.Strings.GetString(key, domain, params...)
	})
	engine.AddFunc("safeURL", func(s string) template.URL {
		return template.URL(s) //nolint:gosec // only called with server built urls
	})

	return engine
}

// New creates the web service and registers all handlers.
func New(deps *handler.Deps) (*Service, error) {
	if deps == nil || deps.Cfg == nil || deps.DB == nil {
		return nil, errors.New(handler.ErrNilACDFatalLogMsg)
	}

	cfg := deps.Cfg

	bodyLimit := int(cfg.Webserver.MaxUploadSize)
	if bodyLimit <= 0 {
		bodyLimit = fiber.DefaultBodyLimit
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize:    8192,
			AppName:           cfg.Title,
			CaseSensitive:     true,
			Immutable:         true,
			Views:             templateEngine(deps),
			PassLocalsToViews: true,
			// multipart overhead on top of the largest accepted image
			BodyLimit: bodyLimit + 64<<10,
		},
	)

	service := &Service{App: app, deps: deps}

	if !cfg.Webserver.DisableRecover {
		app.Use(recoverer.New())
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	app.Get(CheckAlivePath, service.checkAlive)

	if cfg.Metrics.Enabled {
		metricsPath := cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = defaultMetricsPath
		}

		app.Get(metricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	}

	staticFS, err := fs.Sub(embeddedStaticFiles, "static")
	if err != nil {
		return nil, err
	}

	app.Use("/static", static.New("", static.Config{
		FS:     staticFS,
		Browse: cfg.DevMode && cfg.Webserver.BrowseStatic,
	}))

	if root := deps.LocalAssetRoot; root != "" {
		app.Use(AssetsPath, static.New(root, static.Config{MaxAge: 3600}))
	}

	app.Use(authmw.Middleware)
	app.Use(auth.AddPermissionsToLocals(deps.Auth))

	handlers := []handler.Service{
		&login.Handler,
		&logout.Handler,
		&oidchandler.Handler,
		&dashboard.Handler,
		&manage.Handler,
		&settings.Handler,
		&view.Handler,
	}

	for _, h := range handlers {
		if err = h.Init(app, deps); err != nil {
			return nil, err
		}
	}

	app.Get(handler.RootPath, func(c fiber.Ctx) error {
		return c.Redirect().To(dashboard.Path)
	})

	return service, nil
}
