// Package config loads the opcuad configuration from file, environment
// and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (OPCUAD_*), for keys present in the file
//  2. Configuration file (YAML)
//  3. Default values
//
// When no configuration file is found, Load returns the defaults and does
// not read environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/opcuad/internal/bytesize"
)

// Config is the opcuad configuration.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Server contains the OPC UA endpoint and identity settings
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Limits bounds transport buffers, channels, sessions and
	// subscriptions
	Limits LimitsConfig `mapstructure:"limits" yaml:"limits"`

	// Security configures identity policies and the trust list
	Security SecurityConfig `mapstructure:"security" yaml:"security"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	Level string `mapstructure:"level" validate:"required,oneof=TRACE DEBUG INFO WARN ERROR FATAL trace debug info warn error fatal" yaml:"level"`

	// Format specifies the log output format: text or json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls trace sampling (0.0 to 1.0)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// ServerConfig contains the endpoint and application identity.
type ServerConfig struct {
	// EndpointURL is the advertised endpoint, opc.tcp://host:port[/path]
	EndpointURL string `mapstructure:"endpoint_url" validate:"required" yaml:"endpoint_url"`

	// BindAddress is the listen address, host:port
	BindAddress string `mapstructure:"bind_address" validate:"required" yaml:"bind_address"`

	ApplicationURI  string `mapstructure:"application_uri" yaml:"application_uri"`
	ApplicationName string `mapstructure:"application_name" yaml:"application_name"`
	ProductURI      string `mapstructure:"product_uri" yaml:"product_uri"`
}

// LimitsConfig bounds the protocol resources.
type LimitsConfig struct {
	// ReceiveBufferSize / SendBufferSize bound chunk sizes
	ReceiveBufferSize bytesize.ByteSize `mapstructure:"receive_buffer_size" yaml:"receive_buffer_size"`
	SendBufferSize    bytesize.ByteSize `mapstructure:"send_buffer_size" yaml:"send_buffer_size"`
	// MaxMessageSize bounds reassembled messages (0 selects the default)
	MaxMessageSize bytesize.ByteSize `mapstructure:"max_message_size" yaml:"max_message_size"`
	// MaxChunkCount bounds chunks per message (0 selects the default)
	MaxChunkCount uint32 `mapstructure:"max_chunk_count" yaml:"max_chunk_count"`

	MaxSecureChannels  int           `mapstructure:"max_secure_channels" yaml:"max_secure_channels"`
	MaxChannelLifetime time.Duration `mapstructure:"max_channel_lifetime" yaml:"max_channel_lifetime"`

	MaxSessions       int           `mapstructure:"max_sessions" yaml:"max_sessions"`
	MaxSessionTimeout time.Duration `mapstructure:"max_session_timeout" yaml:"max_session_timeout"`

	MaxSubscriptionsPerSession int           `mapstructure:"max_subscriptions_per_session" yaml:"max_subscriptions_per_session"`
	MaxMonitoredItems          int           `mapstructure:"max_monitored_items" yaml:"max_monitored_items"`
	MinPublishingInterval      time.Duration `mapstructure:"min_publishing_interval" yaml:"min_publishing_interval"`

	MaxReferencesPerNode uint32 `mapstructure:"max_references_per_node" yaml:"max_references_per_node"`
}

// SecurityConfig configures identity and trust.
type SecurityConfig struct {
	// AllowAnonymous permits sessions without credentials
	AllowAnonymous bool `mapstructure:"allow_anonymous" yaml:"allow_anonymous"`

	// TrustListDir is a directory of trusted DER certificates; empty
	// disables peer certificate verification
	TrustListDir string `mapstructure:"trust_list_dir" yaml:"trust_list_dir"`

	// Users maps usernames to plaintext passwords for the built-in
	// username token policy. Production deployments plug their own
	// access control instead.
	Users map[string]string `mapstructure:"users" yaml:"users,omitempty"`
}

// Load loads configuration from file, environment and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration against its validation tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if !strings.HasPrefix(cfg.Server.EndpointURL, "opc.tcp://") {
		return fmt.Errorf("endpoint_url must use the opc.tcp scheme, got %q", cfg.Server.EndpointURL)
	}
	return nil
}

// Save writes the configuration to a YAML file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	// Config may carry credentials; keep it owner-only.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper configures environment variables and config file search.
// Environment variables use the OPCUAD_ prefix, e.g. OPCUAD_LOGGING_LEVEL.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("OPCUAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "opcuad")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "opcuad")
}

// configDecodeHooks combines the custom type decode hooks.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// byteSizeDecodeHook converts strings and integers to bytesize.ByteSize,
// so config files may use "64KB" or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}
