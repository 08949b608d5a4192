// Package metrics exposes Prometheus collectors for the HTTP server and
// household mutations.
package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	mutations *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cartshare",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cartshare",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cartshare",
			Name:      "household_mutations_total",
			Help:      "Household mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	reg.MustRegister(m.requests, m.latency, m.mutations)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordMutation counts one household mutation.
func (m *Metrics) RecordMutation(operation, outcome string) {
	m.mutations.WithLabelValues(operation, outcome).Inc()
}

// HouseholdCounter reports how many households are stored.
type HouseholdCounter interface {
	Count(ctx context.Context) (int, error)
}

// RegisterHouseholdGauge exposes the stored household count, queried on
// every scrape.
func RegisterHouseholdGauge(reg prometheus.Registerer, counter HouseholdCounter, logger *slog.Logger) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "cartshare",
		Name:      "households",
		Help:      "Number of stored households.",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := counter.Count(ctx)
		if err != nil {
			logger.Error("failed to count households", "error", err)
			return 0
		}
		return float64(n)
	}))
}
