package logger

import (
	"time"
)

// Console implements a console based logger.
type Console struct {
	Enabled          bool `mapstructure:"enabled"          toml:"enabled"`
	UseConsoleWriter bool `mapstructure:"useConsoleWriter" toml:"useConsoleWriter"`
}

// LogFile implements a file based logger.
type LogFile struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Path    string `mapstructure:"path"    toml:"path"`

	AccessLog        string `mapstructure:"access"           toml:"access"`
	AccessMaxSize    int    `mapstructure:"accessMaxSize"    toml:"accessMaxSize"`
	AccessMaxBackups int    `mapstructure:"accessMaxBackups" toml:"accessMaxBackups"`
	AccessMaxAge     int    `mapstructure:"accessMaxAge"     toml:"accessMaxAge"`

	ErrorLog        string `mapstructure:"error"           toml:"error"`
	ErrorMaxSize    int    `mapstructure:"errorMaxSize"    toml:"errorMaxSize"`
	ErrorMaxBackups int    `mapstructure:"errorMaxBackups" toml:"errorMaxBackups"`
	ErrorMaxAge     int    `mapstructure:"errorMaxAge"     toml:"errorMaxAge"`

	InfoLog        string `mapstructure:"info"           toml:"info"`
	InfoMaxSize    int    `mapstructure:"infoMaxSize"    toml:"infoMaxSize"`
	InfoMaxBackups int    `mapstructure:"infoMaxBackups" toml:"infoMaxBackups"`
	InfoMaxAge     int    `mapstructure:"infoMaxAge"     toml:"infoMaxAge"`

	TraceLog        string `mapstructure:"trace"           toml:"trace"`
	TraceMaxSize    int    `mapstructure:"traceMaxSize"    toml:"traceMaxSize"`
	TraceMaxBackups int    `mapstructure:"traceMaxBackups" toml:"traceMaxBackups"`
	TraceMaxAge     int    `mapstructure:"traceMaxAge"     toml:"traceMaxAge"`

	WarnLog        string `mapstructure:"warn"           toml:"warn"`
	WarnMaxSize    int    `mapstructure:"warnMaxSize"    toml:"warnMaxSize"`
	WarnMaxBackups int    `mapstructure:"warnMaxBackups" toml:"warnMaxBackups"`
	WarnMaxAge     int    `mapstructure:"warnMaxAge"     toml:"warnMaxAge"`
}

// DataDog implements a datadog config.
type DataDog struct {
	ServiceName string        `mapstructure:"serviceName" toml:"serviceName"`
	APIKey      string        `mapstructure:"apiKey"      toml:"apiKey"      json:"-"` // API Key defined at datadog
	Enabled     bool          `mapstructure:"enabled"     toml:"enabled"`
	Site        string        `mapstructure:"site"        toml:"site"` // Regional Site aka DD_SITE ("datadoghq.eu")
	Tags        string        `mapstructure:"tags"        toml:"tags"`
	Timeout     time.Duration `mapstructure:"timeout"     toml:"timeout"` // how long to wait to send a log entry to datadog.
}

// Sentry reports error level events to a sentry project.
type Sentry struct {
	Enabled    bool    `mapstructure:"enabled"    toml:"enabled"`
	DSN        string  `mapstructure:"dsn"        toml:"dsn"        json:"-"`
	SampleRate float64 `mapstructure:"sampleRate" toml:"sampleRate"`
}

// Log implements the logger config.
type Log struct {
	LogLevel string `mapstructure:"logLevel" toml:"logLevel"` // info, warn, error.
	LogEnv   string `mapstructure:"logEnv"   toml:"logEnv"`

	// EnableAccessLogToConsole prints the fiber access log to the console.
	// Does not overrule Console.Enabled.
	EnableAccessLogToConsole bool `mapstructure:"enableAccessLogToConsole" toml:"enableAccessLogToConsole"`
	ReportCaller             bool `mapstructure:"reportCaller"             toml:"reportCaller"`
	DisableCheckAlive        bool `mapstructure:"disableCheckAlive"        toml:"disableCheckAlive"` // do not log /checkalive calls

	AppName     string `mapstructure:"appName"     toml:"appName"`
	ServiceName string `mapstructure:"serviceName" toml:"serviceName"`

	// Console used mainly for docker and dev.
	Console Console `mapstructure:"console" toml:"console"`

	File LogFile `mapstructure:"file" toml:"file"`

	DataDog DataDog `mapstructure:"dataDog" toml:"dataDog"`

	Sentry Sentry `mapstructure:"sentry" toml:"sentry"`
}
