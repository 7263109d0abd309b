// Package metrics provides MindfulU metrics collection.
// It wraps Prometheus collectors on a private registry to record store actions,
// rule engine decisions and interaction latency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records MindfulU telemetry.
type Collector struct {
	registry *prometheus.Registry

	actionsTotal      *prometheus.CounterVec
	ruleHitsTotal     *prometheus.CounterVec
	interactionTime   *prometheus.HistogramVec
	cancelledTotal    *prometheus.CounterVec
	validationsFailed *prometheus.CounterVec
}

// NewCollector creates a collector registered on its own registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "mindfulu"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "actions_total",
			Help:      "Total number of actions dispatched to the store",
		},
		[]string{"action"},
	)

	c.ruleHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "rule_hits_total",
			Help:      "Total number of inputs classified by each engine rule (default when none matched)",
		},
		[]string{"engine", "rule"},
	)

	c.interactionTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "interaction_duration_seconds",
			Help:      "Time from submission to completion of an interaction",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 1.5, 2, 3, 5},
		},
		[]string{"slot"},
	)

	c.cancelledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "cancelled_total",
			Help:      "Total number of interactions cancelled before completion",
		},
		[]string{"slot"},
	)

	c.validationsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "rejected_total",
			Help:      "Total number of submissions rejected by validation",
		},
		[]string{"slot"},
	)

	c.registry.MustRegister(
		c.actionsTotal,
		c.ruleHitsTotal,
		c.interactionTime,
		c.cancelledTotal,
		c.validationsFailed,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler exposing the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveAction counts a dispatched store action.
func (c *Collector) ObserveAction(action string) {
	if c == nil {
		return
	}
	c.actionsTotal.WithLabelValues(action).Inc()
}

// ObserveRule counts a classification made by an engine.
func (c *Collector) ObserveRule(engine, rule string) {
	if c == nil {
		return
	}
	if rule == "" {
		rule = "default"
	}
	c.ruleHitsTotal.WithLabelValues(engine, rule).Inc()
}

// ObserveInteraction records how long an interaction took to complete.
func (c *Collector) ObserveInteraction(slot string, d time.Duration) {
	if c == nil {
		return
	}
	c.interactionTime.WithLabelValues(slot).Observe(d.Seconds())
}

// ObserveCancelled counts an interaction cancelled before completion.
func (c *Collector) ObserveCancelled(slot string) {
	if c == nil {
		return
	}
	c.cancelledTotal.WithLabelValues(slot).Inc()
}

// ObserveRejected counts a submission rejected by validation.
func (c *Collector) ObserveRejected(slot string) {
	if c == nil {
		return
	}
	c.validationsFailed.WithLabelValues(slot).Inc()
}
