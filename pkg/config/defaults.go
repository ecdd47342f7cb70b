package config

import (
	"strings"
	"time"

	"github.com/marmos91/opcuad/internal/bytesize"
)

// GetDefaultConfig returns a complete configuration with every default
// applied.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields with their defaults. Zero values are
// replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyServerDefaults(&cfg.Server)
	applyLimitsDefaults(&cfg.Limits)
	applySecurityDefaults(&cfg.Security)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if !cfg.Enabled {
		cfg.Insecure = true
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.EndpointURL == "" {
		cfg.EndpointURL = "opc.tcp://localhost:4840"
	}
	if cfg.BindAddress == "" {
		cfg.BindAddress = "0.0.0.0:4840"
	}
	if cfg.ApplicationURI == "" {
		cfg.ApplicationURI = "urn:opcuad:server"
	}
	if cfg.ApplicationName == "" {
		cfg.ApplicationName = "opcuad"
	}
	if cfg.ProductURI == "" {
		cfg.ProductURI = "https://github.com/marmos91/opcuad"
	}
}

func applyLimitsDefaults(cfg *LimitsConfig) {
	if cfg.ReceiveBufferSize == 0 {
		cfg.ReceiveBufferSize = 64 * 1024
	}
	if cfg.SendBufferSize == 0 {
		cfg.SendBufferSize = 64 * 1024
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = bytesize.ByteSize(16 * 1024 * 1024)
	}
	if cfg.MaxChunkCount == 0 {
		cfg.MaxChunkCount = 4096
	}
	if cfg.MaxSecureChannels == 0 {
		cfg.MaxSecureChannels = 100
	}
	if cfg.MaxChannelLifetime == 0 {
		cfg.MaxChannelLifetime = time.Hour
	}
	if cfg.MaxSessions == 0 {
		cfg.MaxSessions = 100
	}
	if cfg.MaxSessionTimeout == 0 {
		cfg.MaxSessionTimeout = time.Hour
	}
	if cfg.MaxSubscriptionsPerSession == 0 {
		cfg.MaxSubscriptionsPerSession = 100
	}
	if cfg.MaxMonitoredItems == 0 {
		cfg.MaxMonitoredItems = 1000
	}
	if cfg.MinPublishingInterval == 0 {
		cfg.MinPublishingInterval = 10 * time.Millisecond
	}
	if cfg.MaxReferencesPerNode == 0 {
		cfg.MaxReferencesPerNode = 1000
	}
}

func applySecurityDefaults(cfg *SecurityConfig) {
	if cfg.Users == nil && cfg.TrustListDir == "" {
		cfg.AllowAnonymous = true
	}
}
