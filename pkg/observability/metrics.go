package observability

import (
	"errors"
	"time"

	"github.com/aretw0/irep/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the binding collectors. A nil *Metrics records nothing.
type Metrics struct {
	Operations *prometheus.CounterVec
	Assigned   *prometheus.CounterVec
	Errors     *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "irep_operations_total",
				Help: "Binding operations by kind and outcome",
			},
			[]string{"op", "outcome"},
		),
		Assigned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "irep_fields_assigned_total",
				Help: "Fields stored or emitted",
			},
			[]string{"op"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "irep_field_errors_total",
				Help: "Field errors by kind",
			},
			[]string{"op", "kind"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "irep_operation_duration_seconds",
				Help:    "Duration of binding operations",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.Assigned, m.Errors, m.Duration)
	}
	return m
}

// Observe records a finished operation.
func (m *Metrics) Observe(report *domain.Report, elapsed time.Duration) {
	if m == nil || report == nil {
		return
	}
	outcome := "ok"
	if !report.OK() {
		outcome = "error"
	}
	m.Operations.WithLabelValues(report.Op, outcome).Inc()
	m.Assigned.WithLabelValues(report.Op).Add(float64(report.Assigned))
	for _, fe := range report.Errors {
		m.Errors.WithLabelValues(report.Op, KindLabel(fe.Kind)).Inc()
	}
	m.Duration.WithLabelValues(report.Op).Observe(elapsed.Seconds())
}

// kinds is ordered so that ErrStack wins over ErrOverflow.
var kinds = []struct {
	err   error
	label string
}{
	{domain.ErrStack, "stack"},
	{domain.ErrLookup, "lookup"},
	{domain.ErrPath, "path"},
	{domain.ErrTypeMismatch, "type_mismatch"},
	{domain.ErrOverflow, "overflow"},
	{domain.ErrArity, "arity"},
	{domain.ErrAllocation, "allocation"},
	{domain.ErrSchema, "schema"},
	{domain.ErrUndefined, "undefined"},
	{domain.ErrPublish, "publish"},
}

// KindLabel maps an error kind to a metric label.
func KindLabel(kind error) string {
	for _, k := range kinds {
		if errors.Is(kind, k.err) {
			return k.label
		}
	}
	return "other"
}
