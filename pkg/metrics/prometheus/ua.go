// Package prometheus provides the Prometheus-backed implementations of the
// metrics interfaces. Constructors return nil when metrics are disabled,
// which the consumers treat as a no-op sink.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/opcuad/pkg/metrics"
)

// serviceMetrics implements metrics.ServiceMetrics.
type serviceMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	inFlight        *prometheus.GaugeVec
}

// NewServiceMetrics creates the dispatch metrics, or nil when disabled.
func NewServiceMetrics() metrics.ServiceMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()
	return &serviceMetrics{
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opcuad_service_duration_seconds",
				Help:    "Service call duration by service name",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "opcuad_service_requests_total",
				Help: "Total service calls by service name and status",
			},
			[]string{"service", "status"},
		),
		inFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opcuad_service_in_flight",
				Help: "Service calls currently being processed",
			},
			[]string{"service"},
		),
	}
}

func (m *serviceMetrics) RecordRequest(service string, duration time.Duration, status string) {
	m.requestDuration.WithLabelValues(service).Observe(duration.Seconds())
	m.requestsTotal.WithLabelValues(service, status).Inc()
}

func (m *serviceMetrics) RecordRequestStart(service string) {
	m.inFlight.WithLabelValues(service).Inc()
}

func (m *serviceMetrics) RecordRequestEnd(service string) {
	m.inFlight.WithLabelValues(service).Dec()
}

// transportMetrics implements metrics.TransportMetrics.
type transportMetrics struct {
	connections    prometheus.Gauge
	chunksReceived *prometheus.CounterVec
	chunksSent     *prometheus.CounterVec
	bytesReceived  *prometheus.CounterVec
	bytesSent      *prometheus.CounterVec
	protocolErrors *prometheus.CounterVec
}

// NewTransportMetrics creates the transport metrics, or nil when disabled.
func NewTransportMetrics() metrics.TransportMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()
	return &transportMetrics{
		connections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "opcuad_connections_active",
				Help: "Currently open client connections",
			},
		),
		chunksReceived: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "opcuad_chunks_received_total",
				Help: "Chunks received by message type",
			},
			[]string{"message_type"},
		),
		chunksSent: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "opcuad_chunks_sent_total",
				Help: "Chunks sent by message type",
			},
			[]string{"message_type"},
		),
		bytesReceived: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "opcuad_bytes_received_total",
				Help: "Bytes received by message type",
			},
			[]string{"message_type"},
		),
		bytesSent: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "opcuad_bytes_sent_total",
				Help: "Bytes sent by message type",
			},
			[]string{"message_type"},
		),
		protocolErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "opcuad_protocol_errors_total",
				Help: "Transport protocol violations by status code",
			},
			[]string{"status"},
		),
	}
}

func (m *transportMetrics) RecordConnectionOpened() { m.connections.Inc() }
func (m *transportMetrics) RecordConnectionClosed() { m.connections.Dec() }

func (m *transportMetrics) RecordChunkReceived(messageType string, bytes int) {
	m.chunksReceived.WithLabelValues(messageType).Inc()
	m.bytesReceived.WithLabelValues(messageType).Add(float64(bytes))
}

func (m *transportMetrics) RecordChunkSent(messageType string, bytes int) {
	m.chunksSent.WithLabelValues(messageType).Inc()
	m.bytesSent.WithLabelValues(messageType).Add(float64(bytes))
}

func (m *transportMetrics) RecordProtocolError(status string) {
	m.protocolErrors.WithLabelValues(status).Inc()
}

// runtimeMetrics implements metrics.RuntimeMetrics.
type runtimeMetrics struct {
	channels      prometheus.Gauge
	sessions      prometheus.Gauge
	subscriptions prometheus.Gauge
	notifications prometheus.Counter
	keepAlives    prometheus.Counter
}

// NewRuntimeMetrics creates the manager metrics, or nil when disabled.
func NewRuntimeMetrics() metrics.RuntimeMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()
	return &runtimeMetrics{
		channels: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "opcuad_secure_channels",
				Help: "Currently open secure channels",
			},
		),
		sessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "opcuad_sessions",
				Help: "Currently live sessions",
			},
		),
		subscriptions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "opcuad_subscriptions",
				Help: "Currently live subscriptions",
			},
		),
		notifications: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "opcuad_notifications_published_total",
				Help: "NotificationMessages delivered to publish responses",
			},
		),
		keepAlives: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "opcuad_keep_alives_total",
				Help: "Keep-alive publish responses sent",
			},
		),
	}
}

func (m *runtimeMetrics) SetChannelCount(count int)      { m.channels.Set(float64(count)) }
func (m *runtimeMetrics) SetSessionCount(count int)      { m.sessions.Set(float64(count)) }
func (m *runtimeMetrics) SetSubscriptionCount(count int) { m.subscriptions.Set(float64(count)) }
func (m *runtimeMetrics) RecordNotificationPublished(uint32) { m.notifications.Inc() }
func (m *runtimeMetrics) RecordKeepAlive(uint32)             { m.keepAlives.Inc() }
