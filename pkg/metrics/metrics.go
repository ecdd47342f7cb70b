// Package metrics defines the observability interfaces the server core
// consumes. Implementations are optional: a nil interface disables
// collection with zero overhead. The prometheus sub-package provides the
// production implementation.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics observes service dispatch.
type ServiceMetrics interface {
	// RecordRequest records a completed service call with its service
	// name, duration and resulting status code name.
	RecordRequest(service string, duration time.Duration, status string)
	// RecordRequestStart/End track in-flight requests.
	RecordRequestStart(service string)
	RecordRequestEnd(service string)
}

// TransportMetrics observes connections and chunks.
type TransportMetrics interface {
	RecordConnectionOpened()
	RecordConnectionClosed()
	RecordChunkReceived(messageType string, bytes int)
	RecordChunkSent(messageType string, bytes int)
	RecordProtocolError(status string)
}

// RuntimeMetrics observes the managers and the subscription engine.
type RuntimeMetrics interface {
	SetChannelCount(count int)
	SetSessionCount(count int)
	SetSubscriptionCount(count int)
	RecordNotificationPublished(subscriptionID uint32)
	RecordKeepAlive(subscriptionID uint32)
}

// ============================================================================
// Registry
// ============================================================================

var (
	registryMu sync.RWMutex
	registry   *prometheus.Registry
	enabled    bool
)

// InitRegistry enables metrics collection with a fresh registry.
func InitRegistry() *prometheus.Registry {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// GetRegistry returns the active registry, nil when disabled.
func GetRegistry() *prometheus.Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry
}

// IsEnabled reports whether InitRegistry was called.
func IsEnabled() bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return enabled
}
