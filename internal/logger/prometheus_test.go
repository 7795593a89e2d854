package logger

import (
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statementCounts reads the log statement counter from reg, keyed by level.
func statementCounts(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}

	for _, mf := range families {
		if mf.GetName() != logStatementsMetric {
			continue
		}

		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "level" {
					counts[lp.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}

	return counts
}

func TestPrometheusHook_CountsByLevel(t *testing.T) {
	reg := prometheus.NewRegistry()

	hook, err := NewPrometheusHook("goslider", reg)
	require.NoError(t, err)

	for _, l := range []zerolog.Level{
		zerolog.InfoLevel, zerolog.InfoLevel, zerolog.WarnLevel, zerolog.ErrorLevel,
		zerolog.NoLevel, zerolog.Disabled,
	} {
		hook.Run(nil, l, "msg")
	}

	assert.Equal(t, map[string]float64{"info": 2, "warn": 1, "error": 1}, statementCounts(t, reg))

	// a second logger init keeps counting on the same series
	again, err := NewPrometheusHook("goslider", reg)
	require.NoError(t, err)

	again.Run(nil, zerolog.InfoLevel, "msg")
	assert.InDelta(t, 3, statementCounts(t, reg)["info"], 0)
}

func TestPrometheusHook_ConflictingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(prometheus.NewCounter(prometheus.CounterOpts{
		Name:        logStatementsMetric,
		Help:        "Number of log statements by level.",
		ConstLabels: prometheus.Labels{"service": "goslider"},
	})))

	_, err := NewPrometheusHook("goslider", reg)
	require.Error(t, err)

	assert.NotPanics(t, func() { PrometheusHook{}.Run(nil, zerolog.ErrorLevel, "msg") })
}

func TestErrorHandler_CountsDroppedEvents(t *testing.T) {
	stderr := os.Stderr

	devNull, err := os.Open(os.DevNull)
	require.NoError(t, err)

	os.Stderr = devNull

	t.Cleanup(func() {
		os.Stderr = stderr
		_ = devNull.Close()
	})

	before := DroppedEvents()

	ErrorHandler(errors.New("disk full"))
	ErrorHandler(errors.New("disk full"))

	assert.Equal(t, before+2, DroppedEvents())
}

func TestInit_SentryAndDataDog(t *testing.T) {
	t.Cleanup(func() {
		Flush()
		log.Logger = zerolog.Nop()
	})

	flushers = nil

	err := Init(Log{
		LogLevel:    "warn",
		ServiceName: "goslider-test",
		AppName:     "goslider",
		Sentry:      Sentry{Enabled: true, DSN: "https://public@127.0.0.1:1/1", SampleRate: 1},
		DataDog:     DataDog{Enabled: true, APIKey: "test-key", ServiceName: "goslider", Site: "datadoghq.eu"},
	})
	require.NoError(t, err)

	// one flusher for each of sentry and datadog
	assert.Len(t, flushers, 2)

	log.Info().Msg("below the level")

	Flush()
	assert.Empty(t, flushers)

	err = Init(Log{
		LogLevel:    "info",
		ServiceName: "goslider-test",
		AppName:     "goslider",
		Sentry:      Sentry{Enabled: true, DSN: "not a dsn"},
	})
	require.ErrorContains(t, err, "can't init sentry")
}
