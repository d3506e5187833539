// Package metrics exposes Prometheus instruments for compile passes and rule
// dispatch. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "extforge"

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds every instrument the process records.
type Metrics struct {
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	instancesCreated *prometheus.CounterVec
	compileTotal     *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Rule dispatches by class and outcome.",
		}, []string{"class", "outcome"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching a rule, including argument binding.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"class"}),
		instancesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_created_total",
			Help:      "Executable instances constructed by the registry.",
		}, []string{"class"}),
		compileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compile_total",
			Help:      "Declarations compiled by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	reg.MustRegister(m.dispatchTotal, m.dispatchDuration, m.instancesCreated, m.compileTotal)
	return m
}

// ObserveDispatch records one finished dispatch.
func (m *Metrics) ObserveDispatch(class, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(class, outcome).Inc()
	m.dispatchDuration.WithLabelValues(class).Observe(took.Seconds())
}

// InstanceCreated records one successful construction.
func (m *Metrics) InstanceCreated(class string) {
	if m == nil {
		return
	}
	m.instancesCreated.WithLabelValues(class).Inc()
}

// ObserveCompile records one compiled declaration.
func (m *Metrics) ObserveCompile(kind, outcome string) {
	if m == nil {
		return
	}
	m.compileTotal.WithLabelValues(kind, outcome).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Outcome maps an error to its outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
