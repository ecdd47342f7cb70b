package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/opcuad/internal/bytesize"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "opc.tcp://localhost:4840", cfg.Server.EndpointURL)
	assert.Equal(t, bytesize.ByteSize(64*1024), cfg.Limits.ReceiveBufferSize)
	assert.Equal(t, 100, cfg.Limits.MaxSessions)
	assert.Equal(t, time.Hour, cfg.Limits.MaxChannelLifetime)
	assert.True(t, cfg.Security.AllowAnonymous)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig().Server.EndpointURL, cfg.Server.EndpointURL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: DEBUG
server:
  endpoint_url: opc.tcp://plc.example.org:4840
  bind_address: 0.0.0.0:4840
limits:
  receive_buffer_size: 128Ki
  max_sessions: 5
  max_channel_lifetime: 30m
security:
  allow_anonymous: false
  users:
    operator: hunter2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "opc.tcp://plc.example.org:4840", cfg.Server.EndpointURL)
	assert.Equal(t, bytesize.ByteSize(128*1024), cfg.Limits.ReceiveBufferSize)
	assert.Equal(t, 5, cfg.Limits.MaxSessions)
	assert.Equal(t, 30*time.Minute, cfg.Limits.MaxChannelLifetime)
	assert.False(t, cfg.Security.AllowAnonymous)
	assert.Equal(t, "hunter2", cfg.Security.Users["operator"])

	// Unset fields fall back to defaults.
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 100, cfg.Limits.MaxSecureChannels)
}

func TestValidateRejectsBadScheme(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.EndpointURL = "http://localhost:4840"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsBadLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: LOUD\n"), 0600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "WARN"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "WARN", loaded.Logging.Level)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "config may carry credentials")
}
