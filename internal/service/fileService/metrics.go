package fileService

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Operations      *prometheus.CounterVec // file_storage_operations_total{operation,result}
	PartialFailures *prometheus.CounterVec // file_storage_partial_failures_total{operation}
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "file_storage_operations_total",
			Help: "File lifecycle operations by result",
		}, []string{"operation", "result"}),

		PartialFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "file_storage_partial_failures_total",
			Help: "Operations that left an orphan object behind",
		}, []string{"operation"}),
	}
}

func result(err error) string {
	var partial *PartialFailureError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &partial):
		return "partial_failure"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRemoteStore):
		return "remote_error"
	}
	return "error"
}

func (m *Metrics) record(op string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, result(err)).Inc()
	var partial *PartialFailureError
	if errors.As(err, &partial) {
		m.PartialFailures.WithLabelValues(op).Inc()
	}
}
