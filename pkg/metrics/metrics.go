// Package metrics exposes Prometheus metrics about flow invocations.
package metrics

import (
	"context"

	"github.com/museloop/genflow/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "genflow"

// Collector records finished invocations. It implements flow.Observer.
type Collector struct {
	invocations  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	backendCalls *prometheus.CounterVec
	retries      *prometheus.CounterVec
}

// NewCollector registers the invocation metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_invocations_total",
			Help:      "Finished flow invocations by outcome and error kind.",
		}, []string{"flow", "outcome", "error_kind", "reason"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flow_invocation_duration_seconds",
			Help:      "Wall time of flow invocations.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"flow", "outcome"}),
		backendCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Calls made to the generation backend.",
		}, []string{"flow"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_retries_total",
			Help:      "Invocations retried after a generation failure.",
		}, []string{"flow", "reason"}),
	}
}

func (c *Collector) ObserveInvocation(_ context.Context, inv *models.Invocation) {
	c.invocations.WithLabelValues(inv.Flow, string(inv.Outcome), string(inv.ErrorKind), inv.Reason).Inc()
	c.duration.WithLabelValues(inv.Flow, string(inv.Outcome)).Observe(inv.Duration.Seconds())

	if inv.BackendCalls > 0 {
		c.backendCalls.WithLabelValues(inv.Flow).Add(float64(inv.BackendCalls))
	}
}

// ObserveRetry counts a retry of a failed invocation.
func (c *Collector) ObserveRetry(flow, reason string) {
	c.retries.WithLabelValues(flow, reason).Inc()
}
