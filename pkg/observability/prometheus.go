package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements every hook interface with Prometheus collectors
// registered on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	mutations   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	validations *prometheus.CounterVec
	validateDur prometheus.Histogram

	codecOps     *prometheus.CounterVec
	codecDur     *prometheus.HistogramVec
	unresolved   prometheus.Counter
	layouts      *prometheus.CounterVec
	layoutDur    prometheus.Histogram
	cacheOps     *prometheus.CounterVec
	cacheBytes   prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewPrometheus creates the collectors under namespace.
func NewPrometheus(namespace string) *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_mutations_total",
			Help:      "Graph mutations by operation and outcome",
		}, []string{"op", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_transitions_total",
			Help:      "Editor state transitions",
		}, []string{"from", "to"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Structural validations by result code",
		}, []string{"code"}),
		validateDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Structural validation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		codecOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_operations_total",
			Help:      "Payload encode and decode runs",
		}, []string{"op", "status"}),
		codecDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "codec_duration_seconds",
			Help:      "Payload encode and decode duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"op"}),
		unresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_unresolved_references_total",
			Help:      "Wire names the catalog could not resolve",
		}),
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Layout runs by cache outcome",
		}, []string{"cached"}),
		layoutDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Layout duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache hits, misses and writes by key type",
		}, []string{"op", "key_type"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	p.registry.MustRegister(
		p.mutations, p.transitions, p.validations, p.validateDur,
		p.codecOps, p.codecDur, p.unresolved, p.layouts, p.layoutDur,
		p.cacheOps, p.cacheBytes, p.httpRequests, p.httpDuration,
	)
	return p
}

// Install registers p as the global editor, pipeline, cache and HTTP hooks.
func (p *Prometheus) Install() {
	SetEditorHooks(p)
	SetPipelineHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

// Registry returns the private registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnMutation(_ context.Context, op string, err error) {
	p.mutations.WithLabelValues(op, status(err)).Inc()
}

func (p *Prometheus) OnTransition(_ context.Context, from, to string) {
	p.transitions.WithLabelValues(from, to).Inc()
}

func (p *Prometheus) OnValidate(_ context.Context, code string, d time.Duration) {
	p.validations.WithLabelValues(code).Inc()
	p.validateDur.Observe(d.Seconds())
}

func (p *Prometheus) OnDecode(_ context.Context, _ int, unresolved int, d time.Duration, err error) {
	p.codecOps.WithLabelValues("decode", status(err)).Inc()
	p.codecDur.WithLabelValues("decode").Observe(d.Seconds())
	p.unresolved.Add(float64(unresolved))
}

func (p *Prometheus) OnLayout(_ context.Context, _ int, d time.Duration, cached bool) {
	p.layouts.WithLabelValues(strconv.FormatBool(cached)).Inc()
	if !cached {
		p.layoutDur.Observe(d.Seconds())
	}
}

func (p *Prometheus) OnEncode(_ context.Context, _ int, d time.Duration, err error) {
	p.codecOps.WithLabelValues("encode", status(err)).Inc()
	p.codecDur.WithLabelValues("encode").Observe(d.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues("hit", keyType).Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues("miss", keyType).Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues("set", keyType).Inc()
	p.cacheBytes.Add(float64(size))
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
