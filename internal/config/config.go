// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes single value overrides, e.g. GO_SLIDER_WEBSERVER_PORT.
	EnvPrefix = "GO_SLIDER"

	// EnvConfigJSON holds a JSON document merged over the file config.
	EnvConfigJSON = "GO_SLIDER_CONFIG_JSON"

	defaultShutDownTime  = 5
	defaultSessionExpiry = 8 * time.Hour
	defaultMaxUploadSize = 10 << 20
	defaultMetricsPath   = "/metrics"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var c Config

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	if jsonConfigEnv := v.GetString("config_json"); jsonConfigEnv != "" {
		var err error

		if c, err = decodeAndMergeConfig(c, jsonConfigEnv); err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	if err := json.Unmarshal([]byte(configAsJSON), &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	enc := toml.NewEncoder(&buffer)
	enc.SetIndentTables(true)

	if err := enc.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	out, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err //nolint: wrapcheck
	}

	return string(out) + "\n", nil
}

// validate checks the settings the daemon can not start without
// and fills in defaults for the rest.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = defaultSessionExpiry
	}

	if c.Webserver.MaxUploadSize == 0 {
		c.Webserver.MaxUploadSize = defaultMaxUploadSize
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineMySQL
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnknownGormEngine, c.DB.GormEngine)
	}

	switch c.Assets.Backend {
	case "":
		c.Assets.Backend = "local"
	case "local":
	case "s3":
		if c.Assets.S3.Bucket == "" {
			return errors.Wrap(ErrEmptyBucket, invalidErrMessage)
		}
	default:
		return errors.Wrap(ErrUnknownAssetBackend, c.Assets.Backend)
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = defaultMetricsPath
	}

	return nil
}
