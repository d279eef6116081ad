package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics of the service and the helpers to
// wire them into the router and the analysis pipeline.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	Evaluations        *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	TraceBytes         prometheus.Counter
	Exports            prometheus.Counter
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fluxloop_http_requests_total",
		Help: "Handled HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "code"}), "fluxloop_http_requests_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fluxloop_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"}), "fluxloop_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}
	evaluations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fluxloop_evaluations_total",
		Help: "Sensor evaluations by outcome.",
	}, []string{"outcome"}), "fluxloop_evaluations_total")
	if err != nil {
		return nil, err
	}
	evalDuration, err := registerCollector(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fluxloop_evaluation_duration_seconds",
		Help:    "Time spent evaluating the sensor model and reducing traces.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}), "fluxloop_evaluation_duration_seconds")
	if err != nil {
		return nil, err
	}
	traceBytes, err := registerCollector(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluxloop_trace_bytes_total",
		Help: "Bytes of instrument exports downloaded from object storage.",
	}), "fluxloop_trace_bytes_total")
	if err != nil {
		return nil, err
	}
	exports, err := registerCollector(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluxloop_exports_total",
		Help: "Result curves written to object storage.",
	}), "fluxloop_exports_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		HTTPRequests:       requests,
		HTTPDurations:      durations,
		Evaluations:        evaluations,
		EvaluationDuration: evalDuration,
		TraceBytes:         traceBytes,
		Exports:            exports,
	}, nil
}

// Middleware records request counts and durations by chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if c == nil {
			return
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDurations.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveEvaluation records one evaluation. A nil collector is a no-op.
func (c *Collector) ObserveEvaluation(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.Evaluations.WithLabelValues(outcome).Inc()
	c.EvaluationDuration.Observe(d.Seconds())
}

// AddTraceBytes counts downloaded export bytes.
func (c *Collector) AddTraceBytes(n int) {
	if c == nil {
		return
	}
	c.TraceBytes.Add(float64(n))
}

// IncExports counts one exported curve.
func (c *Collector) IncExports() {
	if c == nil {
		return
	}
	c.Exports.Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

// registerCollector handles scalar metrics, reusing an existing collector of
// the same type.
func registerCollector[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
