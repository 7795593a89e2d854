package logger

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

const sentryFlushTimeout = 2 * time.Second

// SentryHook reports error, fatal and panic log statements to sentry.
type SentryHook struct {
	capture func(level sentry.Level, msg string)
}

// NewSentryHook initializes the sentry client and returns the hook.
func NewSentryHook(cfg Log) (SentryHook, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.LogEnv,
		ServerName:  cfg.ServiceName,
		Release:     cfg.AppName,
		SampleRate:  cfg.Sentry.SampleRate,
	})
	if err != nil {
		return SentryHook{}, err //nolint:wrapcheck
	}

	return SentryHook{capture: captureMessage}, nil
}

func captureMessage(level sentry.Level, msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		sentry.CaptureMessage(msg)
	})
}

// Run implements zerolog.Hook run method.
func (h SentryHook) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if h.capture == nil || level < zerolog.ErrorLevel || level > zerolog.PanicLevel {
		return
	}

	switch level {
	case zerolog.FatalLevel, zerolog.PanicLevel:
		h.capture(sentry.LevelFatal, msg)
	default:
		h.capture(sentry.LevelError, msg)
	}
}
