// Package dsn builds the connection strings of the supported databases.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/GoSlider/GoSlider/internal/config"
)

// Create builds the Data Source Name for the configured gorm engine. For
// sqlite it is the database file.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return Postgres(cfg)
	case config.EngineSQLite:
		return cfg.DB.Name
	default:
		return MySQL(cfg)
	}
}

// MySQL returns a go-sql-driver DSN.
func MySQL(cfg *config.Config) string {
	out := fmt.Sprintf("%s:%s@tcp(%s)/%s",
		cfg.DB.User,
		cfg.DB.Password,
		net.JoinHostPort(cfg.DB.Host, strconv.Itoa(cfg.DB.Port)),
		cfg.DB.Name,
	)

	if cfg.DB.Extras != "" {
		out += "?" + cfg.DB.Extras
	}

	return out
}

// Postgres returns a postgres connection URI. Extras are appended as the
// query, e.g. "sslmode=disable".
func Postgres(cfg *config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DB.User, cfg.DB.Password),
		Host:     net.JoinHostPort(cfg.DB.Host, strconv.Itoa(cfg.DB.Port)),
		Path:     "/" + cfg.DB.Name,
		RawQuery: cfg.DB.Extras,
	}

	return u.String()
}
