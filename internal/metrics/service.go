package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github/qdoge/go-wallet/internal/walleterrors"
)

const namespace = "qwallet"

// Service records wallet metrics. A nil *Service is valid and records nothing.
type Service struct {
	registry *prometheus.Registry

	signRequests   *prometheus.CounterVec
	signDuration   *prometheus.HistogramVec
	broadcasts     *prometheus.CounterVec
	connected      prometheus.Gauge
	ledgerFailover prometheus.Counter
}

// New creates a Service with its own registry, including Go and process collectors.
func New() *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return NewWithRegistry(registry)
}

// NewWithRegistry registers the wallet collectors on registry.
func NewWithRegistry(registry *prometheus.Registry) *Service {
	s := &Service{
		registry: registry,
		signRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_requests_total",
			Help:      "Signing requests by backend and outcome",
		}, []string{"backend", "outcome"}),
		signDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sign_duration_seconds",
			Help:      "Time spent waiting for a signature, including external round-trips",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"backend"}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Broadcast transactions by kind and outcome",
		}, []string{"kind", "outcome"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_connected",
			Help:      "1 while a session is active",
		}),
		ledgerFailover: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_failover_total",
			Help:      "Ledger requests retried against another RPC endpoint",
		}),
	}

	registry.MustRegister(s.signRequests, s.signDuration, s.broadcasts, s.connected, s.ledgerFailover)

	return s
}

// Handler serves the registry in the Prometheus exposition format.
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

func (s *Service) ObserveSign(backend string, started time.Time, err error) {
	if s == nil {
		return
	}

	s.signRequests.WithLabelValues(labelOrUnknown(backend), Outcome(err)).Inc()
	s.signDuration.WithLabelValues(labelOrUnknown(backend)).Observe(time.Since(started).Seconds())
}

func (s *Service) ObserveBroadcast(kind string, err error) {
	if s == nil {
		return
	}

	s.broadcasts.WithLabelValues(labelOrUnknown(kind), Outcome(err)).Inc()
}

func (s *Service) SetConnected(connected bool) {
	if s == nil {
		return
	}

	if connected {
		s.connected.Set(1)
		return
	}
	s.connected.Set(0)
}

func (s *Service) IncLedgerFailover() {
	if s == nil {
		return
	}

	s.ledgerFailover.Inc()
}

// Outcome is "ok", the wallet error code, or "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}

	if code := walleterrors.CodeOf(err); code != "" {
		return string(code)
	}

	return "error"
}

// Registry exposes the underlying registry, mostly for tests.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func labelOrUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
