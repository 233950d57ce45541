package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "kaizen"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	httpRequests    *prom.CounterVec
	requestDuration *prom.HistogramVec
	stateSaves      *prom.CounterVec
	webhooks        *prom.CounterVec
	autosaves       *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
		stateSaves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "state_saves_total",
			Help:      "State document saves by outcome",
		}, []string{"outcome"}),
		webhooks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_received_total",
			Help:      "Webhook deliveries by source",
		}, []string{"source"}),
		autosaves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "autosaves_total",
			Help:      "Autosave ticks by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.httpRequests, pr.requestDuration, pr.stateSaves, pr.webhooks, pr.autosaves)
	return pr
}

func (p *PrometheusRecorder) IncHTTPRequest(route string, status int) {
	if p == nil {
		return
	}
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) ObserveRequestDuration(route string, d time.Duration) {
	if p == nil {
		return
	}
	p.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStateSave(outcome string) {
	if p == nil {
		return
	}
	p.stateSaves.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncWebhook(source string) {
	if p == nil {
		return
	}
	p.webhooks.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) IncAutosave(outcome string) {
	if p == nil {
		return
	}
	p.autosaves.WithLabelValues(outcome).Inc()
}
