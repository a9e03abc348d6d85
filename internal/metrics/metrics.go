package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "debtvsdca"

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	simulations         *prometheus.CounterVec
	returnEstimates     *prometheus.CounterVec
	priceFetches        *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		simulations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "simulations_total",
				Help:      "Total number of debt vs DCA simulations",
			},
			[]string{"policy", "result"},
		),
		returnEstimates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "return_estimates_total",
				Help:      "Return estimates by source (history or fallback)",
			},
			[]string{"source"},
		),
		priceFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_fetches_total",
				Help:      "Upstream price source requests",
			},
			[]string{"provider", "kind", "status"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Price cache lookups by result",
			},
			[]string{"result"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.simulations,
		m.returnEstimates,
		m.priceFetches,
		m.cacheLookups,
		m.httpRequestDuration,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) RecordSimulation(policy string, err error) {
	if m == nil {
		return
	}
	m.simulations.WithLabelValues(policy, status(err)).Inc()
}

func (m *Metrics) RecordEstimate(source string) {
	if m == nil {
		return
	}
	m.returnEstimates.WithLabelValues(source).Inc()
}

// RecordFetch counts one upstream request; kind is history, price, top or search.
func (m *Metrics) RecordFetch(provider, kind string, err error) {
	if m == nil {
		return
	}
	m.priceFetches.WithLabelValues(provider, kind, status(err)).Inc()
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Middleware records request latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
