// Package daemon opens the database, the asset backend and the login
// providers and runs the web service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoSlider/GoSlider/internal/asset"
	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/config"
	"github.com/GoSlider/GoSlider/internal/db/dsn"
	"github.com/GoSlider/GoSlider/internal/db/models"
	"github.com/GoSlider/GoSlider/internal/i18n"
	"github.com/GoSlider/GoSlider/internal/logger"
	"github.com/GoSlider/GoSlider/internal/logger/adapter/stdlogger"
	"github.com/GoSlider/GoSlider/internal/render"
	"github.com/GoSlider/GoSlider/internal/slider"
	"github.com/GoSlider/GoSlider/internal/web"
	"github.com/GoSlider/GoSlider/internal/web/handler"
	"github.com/GoSlider/GoSlider/internal/web/session"
)

// sessionTable is used by the mysql and postgres session drivers.
const sessionTable = "fiber_sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start runs the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
	}()

	d.webService.WaitShutdown()

	err := <-errCh

	logger.Flush()

	return err
}

// OpenDB opens the configured database and migrates the schema.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		if dir := filepath.Dir(cfg.DB.Name); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}

		dialector = sqlite.Open(dsn.Create(cfg))
	default:
		dialector = gormmysql.Open(dsn.Create(cfg))
	}

	level := gormlogger.Warn
	if cfg.DevMode {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlogger.New(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if cfg.DB.GormEngine == config.EngineSQLite {
		sqlDB, errDB := db.DB()
		if errDB != nil {
			return nil, errDB
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Group{},
		&models.GroupMapping{},
		&models.UserGroup{},
		&models.Setting{},
		&models.Session{},
		&models.Slider{},
		&models.Slide{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// OpenAssets returns the configured image backend.
func OpenAssets(ctx context.Context, cfg *config.Config) (asset.Binding, string, error) {
	if cfg.Assets.Backend == "s3" {
		store, err := asset.NewS3Store(ctx, cfg.Assets.S3)
		return store, "", err
	}

	store, err := asset.NewLocalStore(cfg.Assets.Local)
	if err != nil {
		return nil, "", err
	}

	return store, store.Root(), nil
}

// NewSlider returns the slide store and the instance registry on db.
func NewSlider(db *gorm.DB, assets asset.Binding) (*slider.Store, *slider.Instances) {
	store := slider.NewStore(db, assets)

	return store, slider.NewInstances(db, slider.NewLifecycle(db, store))
}

func initSessions(cfg *config.Config, db *gorm.DB) {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		session.Init(sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		}))
	case config.EnginePostgres:
		session.Init(sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		}))
	default:
		session.Init(session.NewGormStorage(db))
	}
}

func ldapProvider(cfg *config.Config, db *gorm.DB, svc *auth.Service) *auth.LDAPProvider {
	c := cfg.Auth.LDAP

	provider, err := auth.NewLDAPProvider(&auth.LDAPConfig{
		Enabled:      c.Enabled,
		Host:         c.Host,
		Port:         c.Port,
		UseSSL:       c.UseSSL,
		UseTLS:       c.UseTLS,
		SkipVerify:   c.SkipVerify,
		BindDN:       c.BindDN,
		BindPassword: c.BindPassword,
		BaseDN:       c.BaseDN,
		UserFilter:   c.UserFilter,
		GroupBaseDN:  c.GroupBaseDN,
		GroupFilter:  c.GroupFilter,
		GroupRoles:   c.GroupRoles,
		Timeout:      c.Timeout,
	}, db)
	if err != nil {
		if !errors.Is(err, auth.ErrLDAPDisabled) {
			log.Warn().Err(err).Msg("failed to initialize ldap provider - ldap authentication will be disabled")
		}

		return nil
	}

	if err = provider.ApplyGroupRoles(svc); err != nil {
		log.Warn().Err(err).Msg("failed to map ldap groups to roles")
	}

	if err = provider.TestConnection(); err != nil {
		log.Warn().Err(err).Msg("ldap server is not reachable, logins will be retried per request")
	}

	return provider
}

func oidcProvider(ctx context.Context, cfg *config.Config, db *gorm.DB) *auth.OIDCProvider {
	c := cfg.Auth.OIDC

	provider, err := auth.NewOIDCProvider(ctx, &auth.OIDCConfig{
		Enabled:      c.Enabled,
		ProviderURL:  c.ProviderURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
		GroupsClaim:  c.GroupsClaim,
	}, db)
	if err != nil {
		if !errors.Is(err, auth.ErrOIDCDisabled) {
			log.Warn().Err(err).Msg("failed to initialize oidc provider - oidc authentication will be disabled")
		}

		return nil
	}

	log.Info().Msg("oidc authentication provider initialized")

	return provider
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	ctx := context.Background()

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = Seed(cfg, db); err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	initSessions(cfg, db)

	assets, assetRoot, err := OpenAssets(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset backend: %w", err)
	}

	catalog, err := i18n.New()
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	if err = catalog.RegisterValidator(validate); err != nil {
		return nil, err
	}

	store, instances := NewSlider(db, assets)
	authService := auth.NewService(db)

	webService, err := web.New(&handler.Deps{
		Cfg:            cfg,
		DB:             db,
		Auth:           authService,
		LDAP:           ldapProvider(cfg, db, authService),
		OIDC:           oidcProvider(ctx, cfg, db),
		Slides:         store,
		Instances:      instances,
		Renderer:       render.New(assets, catalog),
		Strings:        catalog,
		Validate:       validate,
		LocalAssetRoot: assetRoot,
	})
	if err != nil {
		return nil, err
	}

	return &Daemon{cfg: cfg, webService: webService}, nil
}
