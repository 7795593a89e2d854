package logger

import (
	"errors"
	"os"
	"strconv"
	"sync/atomic"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")

	// ErrSentryDSNIsEmpty is returned if sentry is enabled without a DSN.
	ErrSentryDSNIsEmpty = errors.New("config Log.Sentry.DSN can not be empty when sentry is enabled")

	// ErrDataDogAPIKeyIsEmpty is returned if datadog is enabled without an API key.
	ErrDataDogAPIKeyIsEmpty = errors.New("config Log.DataDog.APIKey can not be empty when datadog is enabled")
)

// droppedEvents counts events zerolog could not write.
var droppedEvents atomic.Uint64 //nolint:gochecknoglobals

// ErrorHandler is installed as zerolog.ErrorHandler. A failing writer
// must not recurse into the logger, so the error goes to stderr.
func ErrorHandler(err error) {
	n := droppedEvents.Add(1)

	_, _ = os.Stderr.WriteString("goslider: log event not written (" + strconv.FormatUint(n, 10) + " so far): " + err.Error() + "\n")
}

// DroppedEvents returns how many log events could not be written.
func DroppedEvents() uint64 {
	return droppedEvents.Load()
}
