package main

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/0xpanoramix/flashbots-relay/pkg/rpc"
)

var _ rpc.CallRecorder = (*Metrics)(nil)

// Metrics contains all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	RelayCalls        *prometheus.CounterVec
	RelayCallDuration *prometheus.HistogramVec
	RelayErrors       *prometheus.CounterVec
	HistoryWrites     *prometheus.CounterVec
}

// NewMetrics initializes Prometheus metrics on a private registry
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}

// NewMetricsWithRegistry initializes and registers Prometheus metrics with a custom registry
func NewMetricsWithRegistry(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RelayCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flashbots_relay_calls_total",
				Help: "The total number of relay calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		RelayCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flashbots_relay_call_duration_seconds",
				Help:    "Duration of relay calls, signing included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RelayErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flashbots_relay_errors_total",
				Help: "The total number of errors reported by the relay by code",
			},
			[]string{"method", "code"},
		),
		HistoryWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flashbots_relay_history_writes_total",
				Help: "The total number of submission journal writes",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) RecordCall(method rpc.Method, outcome string, duration time.Duration) {
	m.RelayCalls.WithLabelValues(method.String(), outcome).Inc()
	m.RelayCallDuration.WithLabelValues(method.String()).Observe(duration.Seconds())
}

func (m *Metrics) RecordRelayError(method rpc.Method, relayErr *rpc.RelayError) {
	m.RelayErrors.WithLabelValues(method.String(), strconv.FormatInt(relayErr.Code(), 10)).Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
