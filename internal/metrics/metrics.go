// Package metrics exposes Prometheus counters for the review workflow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agency_portal"

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	registry      *prometheus.Registry
	transitions   *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

// NewRecorder registers the portal's collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_transitions_total",
			Help:      "Content status transitions by kind, source and target status.",
		}, []string{"kind", "from", "to"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_conflicts_total",
			Help:      "Writes rejected because the record changed concurrently.",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Review notifications by action and outcome (recorded, disabled).",
		}, []string{"action", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
	}
	reg.MustRegister(
		r.transitions, r.conflicts, r.notifications, r.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Transition(kind, from, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(kind, from, to).Inc()
}

func (r *Recorder) Conflict(kind string) {
	if r == nil {
		return
	}
	r.conflicts.WithLabelValues(kind).Inc()
}

func (r *Recorder) Notification(action, outcome string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(action, outcome).Inc()
}

func (r *Recorder) HTTPRequest(method, code string) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, code).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
