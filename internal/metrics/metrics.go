// Package metrics exposes Prometheus counters for the generation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	Generations *prometheus.CounterVec
	Attempts    prometheus.Counter
	Findings    *prometheus.CounterVec
	CacheHits   prometheus.Counter
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on the given registerer. Tests pass a private
// registry so repeated construction does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "forgeui_generations_total",
			Help: "Total generation requests completed, by outcome",
		}, []string{"outcome"}),
		Attempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "forgeui_generation_attempts_total",
			Help: "Total model attempts including correction rounds",
		}),
		Findings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "forgeui_rule_findings_total",
			Help: "Total design rule findings, by kind",
		}, []string{"kind"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "forgeui_cache_hits_total",
			Help: "Total generation responses served from the cache",
		}),
	}
}

// ObserveOutcome records one finished request.
func (m *Metrics) ObserveOutcome(success bool) {
	if m == nil {
		return
	}
	outcome := "accepted"
	if !success {
		outcome = "exhausted"
	}
	m.Generations.WithLabelValues(outcome).Inc()
}

// ObserveError records a request that failed before reaching an outcome.
func (m *Metrics) ObserveError() {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues("error").Inc()
}

// ObserveAttempt records one model attempt and its finding kinds.
func (m *Metrics) ObserveAttempt(findingKinds []string) {
	if m == nil {
		return
	}
	m.Attempts.Inc()
	for _, kind := range findingKinds {
		m.Findings.WithLabelValues(kind).Inc()
	}
}

// ObserveCacheHit records one response served from cache.
func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}
