package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/internal/telemetry"
	"github.com/marmos91/opcuad/pkg/config"
	"github.com/marmos91/opcuad/pkg/metrics"
	promimpl "github.com/marmos91/opcuad/pkg/metrics/prometheus"
	"github.com/marmos91/opcuad/pkg/security"
	"github.com/marmos91/opcuad/pkg/server"
	"github.com/marmos91/opcuad/pkg/transport"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the OPC UA server",
	Long: `Start the OPC UA server in the foreground.

Use --config to specify a configuration file, or rely on the default at
$XDG_CONFIG_HOME/opcuad/config.yaml. Settings present in the config file
can be overridden through OPCUAD_* environment variables; when no config
file is found the defaults are used and environment variables are not
read.

Examples:
  # Start with defaults on opc.tcp://localhost:4840
  opcuad start

  # Start with a custom config file
  opcuad start --config /etc/opcuad/config.yaml

  # Override the log level set in the config file
  OPCUAD_LOGGING_LEVEL=DEBUG opcuad start --config /etc/opcuad/config.yaml`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
		ServiceName:    "opcuad",
		ServiceVersion: Version,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()

	deps := server.Dependencies{}

	// Metrics server.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		reg := metrics.InitRegistry()
		deps.ServiceMetrics = promimpl.NewServiceMetrics()
		deps.TransportMetrics = promimpl.NewTransportMetrics()
		deps.RuntimeMetrics = promimpl.NewRuntimeMetrics()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info("metrics server listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", logger.KeyError, err.Error())
			}
		}()
	}

	// Access control and trust list.
	ac := security.NewDefaultAccessControl(cfg.Security.AllowAnonymous)
	for username, password := range cfg.Security.Users {
		if err := ac.AddUser(username, password); err != nil {
			return fmt.Errorf("register user %q: %w", username, err)
		}
	}
	deps.AccessControl = ac

	if cfg.Security.TrustListDir != "" {
		certs, err := security.NewTrustListCertificateGroup(cfg.Security.TrustListDir)
		if err != nil {
			return fmt.Errorf("load trust list: %w", err)
		}
		deps.Certificates = certs
	}

	srv := server.New(server.Config{
		EndpointURL:     cfg.Server.EndpointURL,
		ApplicationURI:  cfg.Server.ApplicationURI,
		ApplicationName: cfg.Server.ApplicationName,
		ProductURI:      cfg.Server.ProductURI,

		ManufacturerName: "opcuad",
		ProductName:      "opcuad",
		SoftwareVersion:  Version,
		BuildNumber:      Commit,

		MaxSecureChannels:  cfg.Limits.MaxSecureChannels,
		MaxChannelLifetime: cfg.Limits.MaxChannelLifetime,

		MaxSessions:       cfg.Limits.MaxSessions,
		MaxSessionTimeout: cfg.Limits.MaxSessionTimeout,

		MaxSubscriptionsPerSession: cfg.Limits.MaxSubscriptionsPerSession,
		MaxMonitoredItemsPerSub:    cfg.Limits.MaxMonitoredItems,
		MinPublishingInterval:      cfg.Limits.MinPublishingInterval,
		MaxReferencesPerNode:       cfg.Limits.MaxReferencesPerNode,

		TransportLimits: transport.Limits{
			ReceiveBufferSize: uint32(cfg.Limits.ReceiveBufferSize),
			SendBufferSize:    uint32(cfg.Limits.SendBufferSize),
			MaxMessageSize:    uint32(cfg.Limits.MaxMessageSize),
			MaxChunkCount:     cfg.Limits.MaxChunkCount,
		},
	}, deps)

	// Graceful shutdown on SIGINT/SIGTERM.
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(cfg.Server.BindAddress)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-done:
		if err != nil {
			return err
		}
	}

	srv.Shutdown()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	logger.Info("shutdown complete")
	return nil
}
