package slider

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultInvalid  = "invalid"
	resultError    = "error"
)

var slideOperations = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "slider_slide_operations_total",
		Help: "Slide store operations by operation and result.",
	},
	[]string{"operation", "result"},
)

func observe(operation string, err error) {
	slideOperations.WithLabelValues(operation, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrNotFound):
		return resultNotFound
	case errors.Is(err, ErrValidation):
		return resultInvalid
	default:
		return resultError
	}
}
