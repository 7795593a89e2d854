package config

import (
	"time"

	"github.com/GoSlider/GoSlider/internal/asset"
	"github.com/GoSlider/GoSlider/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration `mapstructure:"expiryTime" toml:"expiryTime"`
}

// Config overall data structure.
type Config struct {
	DevMode   bool `mapstructure:"devMode"   toml:"devMode"` // enable dev mode for development
	Title     string
	DB        DB
	Log       logger.Log
	Webserver Webserver
	Auth      Auth
	Assets    Assets
	Metrics   Metrics
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool    `mapstructure:"browseStatic"   toml:"browseStatic"`   // static file browsing, dev only
	DisableRecover bool    `mapstructure:"disableRecover" toml:"disableRecover"` // disable recover middleware
	Domain         string  `mapstructure:"domain"         toml:"domain"`
	Port           int     `mapstructure:"port"           toml:"port"`
	ShutDownTime   int     `mapstructure:"shutDownTime"   toml:"shutDownTime"` // seconds to answer 503 before shutdown
	URL            string  `mapstructure:"url"            toml:"url"`          // public base url
	MaxUploadSize  int64   `mapstructure:"maxUploadSize"  toml:"maxUploadSize"`
	Session        Session `mapstructure:"session"        toml:"session"`
}

// LocalDBAuth toggles username and password login against the users table.
type LocalDBAuth struct {
	Enabled bool `mapstructure:"enabled" toml:"enabled"`
}

// LDAPAuth holds the directory login settings.
type LDAPAuth struct {
	Enabled      bool   `mapstructure:"enabled"      toml:"enabled"`
	Host         string `mapstructure:"host"         toml:"host"`
	Port         int    `mapstructure:"port"         toml:"port"`
	UseSSL       bool   `mapstructure:"useSSL"       toml:"useSSL"`
	UseTLS       bool   `mapstructure:"useTLS"       toml:"useTLS"`
	SkipVerify   bool   `mapstructure:"skipVerify"   toml:"skipVerify"`
	BindDN       string `mapstructure:"bindDN"       toml:"bindDN"`
	BindPassword string `mapstructure:"bindPassword" toml:"bindPassword" json:"-"`
	BaseDN       string `mapstructure:"baseDN"       toml:"baseDN"`
	UserFilter   string `mapstructure:"userFilter"   toml:"userFilter"`
	GroupBaseDN  string `mapstructure:"groupBaseDN"  toml:"groupBaseDN"`
	GroupFilter  string `mapstructure:"groupFilter"  toml:"groupFilter"`
	Timeout      int    `mapstructure:"timeout"      toml:"timeout"`
	// GroupRoles maps a directory group name to the role its members get.
	GroupRoles map[string]string `mapstructure:"groupRoles" toml:"groupRoles"`
}

// OIDCAuth holds the OpenID Connect login settings.
type OIDCAuth struct {
	Enabled      bool     `mapstructure:"enabled"      toml:"enabled"`
	ProviderURL  string   `mapstructure:"providerURL"  toml:"providerURL"`
	ClientID     string   `mapstructure:"clientID"     toml:"clientID"`
	ClientSecret string   `mapstructure:"clientSecret" toml:"clientSecret" json:"-"`
	RedirectURL  string   `mapstructure:"redirectURL"  toml:"redirectURL"`
	Scopes       []string `mapstructure:"scopes"       toml:"scopes"`
	GroupsClaim  string   `mapstructure:"groupsClaim"  toml:"groupsClaim"`
}

// Auth bundles the login methods.
type Auth struct {
	LocalDB LocalDBAuth `mapstructure:"localDB" toml:"localDB"`
	LDAP    LDAPAuth    `mapstructure:"ldap"    toml:"ldap"`
	OIDC    OIDCAuth    `mapstructure:"oidc"    toml:"oidc"`
}

// Assets selects where slide images are kept.
type Assets struct {
	Backend string            `mapstructure:"backend" toml:"backend"` // local or s3
	Local   asset.LocalConfig `mapstructure:"local"   toml:"local"`
	S3      asset.S3Config    `mapstructure:"s3"      toml:"s3"`
}

// Metrics toggles the prometheus endpoint.
type Metrics struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Path    string `mapstructure:"path"    toml:"path"`
}
