// Package metrics exposes the Prometheus instruments of the job dispatch service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/target/jobdispatch/internal/domain/ref"
	obserrors "github.com/target/jobdispatch/internal/observability/errors"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

const namespace = "jobdispatch"

// Metrics holds the registered collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RefsGenerated       *prometheus.CounterVec
	Transitions         *prometheus.CounterVec
	RunDuration         *prometheus.HistogramVec
	FieldsResolved      *prometheus.CounterVec
	FieldResolveSeconds *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var _ ref.Observer = (*Metrics)(nil)

// Options configures New.
type Options struct {
	// Registry receives the collectors; a fresh registry is created when nil.
	Registry *prometheus.Registry
	// RuntimeCollectors adds the Go runtime and process collectors.
	RuntimeCollectors bool
}

// New creates and registers all collectors.
func New(opts Options) *Metrics {
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		RefsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refs_generated_total",
			Help:      "Reference codes generated, by prefix and result.",
		}, []string{"prefix", "result", "error_class"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Job dispatch lifecycle transitions, by transition and result.",
		}, []string{"transition", "result", "error_class"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of finished job dispatch attempts.",
			Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300, 900, 3600},
		}, []string{"name", "status"}),
		FieldsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_fields_resolved_total",
			Help:      "Derived view fields resolved, by field and result.",
		}, []string{"field", "result"}),
		FieldResolveSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_field_resolve_seconds",
			Help:      "Time spent resolving a derived view field.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"field"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.RefsGenerated,
		m.Transitions,
		m.RunDuration,
		m.FieldsResolved,
		m.FieldResolveSeconds,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	if opts.RuntimeCollectors {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// RefGenerated implements ref.Observer.
func (m *Metrics) RefGenerated(prefix string, err error) {
	if m == nil {
		return
	}
	m.RefsGenerated.WithLabelValues(prefix, result(err), obserrors.Classify(err)).Inc()
}

// TransitionMetric captures one lifecycle transition for emission.
type TransitionMetric struct {
	Name       string
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// ObserveTransition records a lifecycle transition and, for finished attempts, its run time.
func (m *Metrics) ObserveTransition(in TransitionMetric) {
	if m == nil {
		return
	}
	res := in.Result
	if res == "" {
		res = result(in.Err)
	}
	class := ""
	if res == ResultError {
		class = obserrors.Classify(in.Err)
	}
	m.Transitions.WithLabelValues(in.Transition, res, class).Inc()
	if in.Duration > 0 && res == ResultSuccess {
		m.RunDuration.WithLabelValues(in.Name, in.Transition).Observe(in.Duration.Seconds())
	}
}

// FieldResolved records the outcome of resolving one derived field.
func (m *Metrics) FieldResolved(field string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FieldsResolved.WithLabelValues(field, result(err)).Inc()
	m.FieldResolveSeconds.WithLabelValues(field).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by the matched route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
