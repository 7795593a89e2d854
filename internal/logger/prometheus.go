package logger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const logStatementsMetric = "goslider_log_statements_total"

// PrometheusHook counts log statements per level.
type PrometheusHook struct {
	statements *prometheus.CounterVec
}

// Run implements zerolog.Hook.
func (h PrometheusHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if h.statements == nil || level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}

	h.statements.WithLabelValues(level.String()).Inc()
}

// NewPrometheusHook registers the log statement counter of service with
// reg. Calling it again for the same registry reuses the counter, so the
// logger can be initialised more than once.
func NewPrometheusHook(service string, reg prometheus.Registerer) (PrometheusHook, error) {
	statements := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        logStatementsMetric,
			Help:        "Number of log statements by level.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"level"},
	)

	if err := reg.Register(statements); err != nil {
		var registered prometheus.AlreadyRegisteredError
		if !errors.As(err, &registered) {
			return PrometheusHook{}, err //nolint:wrapcheck
		}

		existing, ok := registered.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return PrometheusHook{}, err //nolint:wrapcheck
		}

		statements = existing
	}

	return PrometheusHook{statements: statements}, nil
}
