// Package stdlogger adapts the global zerolog logger to printf style logger
// interfaces, most notably the gorm logger writer.
package stdlogger

import (
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to zerolog.
type Logger struct {
	component string
}

// New returns a Logger writing to the global zerolog logger.
func New() *Logger {
	return &Logger{component: "gorm"}
}

// Printf implements gorm's logger.Writer. gorm decides the level itself,
// so everything it prints is logged at info.
func (l *Logger) Printf(format string, args ...interface{}) {
	log.Info().Str("component", l.component).Msgf(format, args...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	log.Debug().Str("component", l.component).Msgf(format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	log.Info().Str("component", l.component).Msgf(format, args...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, args ...interface{}) {
	log.Warn().Str("component", l.component).Msgf(format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	log.Error().Str("component", l.component).Msgf(format, args...)
}
