package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testConnectorKey = "connector-key-0123456789"
	testProviderKey  = "provider-key-0123456789"
)

func setRequired(t *testing.T) {
	t.Setenv("CONNECTOR_API_KEY", testConnectorKey)
	t.Setenv("VIANEXUS_API_KEY", testProviderKey)
}

func TestLoadFailsWithoutConnectorKey(t *testing.T) {
	t.Setenv("CONNECTOR_API_KEY", "")
	t.Setenv("VIANEXUS_API_KEY", testProviderKey)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONNECTOR_API_KEY")
	assert.NotContains(t, err.Error(), testProviderKey)
}

func TestLoadFailsWithoutProviderKey(t *testing.T) {
	t.Setenv("CONNECTOR_API_KEY", testConnectorKey)
	t.Setenv("VIANEXUS_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIANEXUS_API_KEY")
}

func TestLoadRejectsShortConnectorKey(t *testing.T) {
	t.Setenv("CONNECTOR_API_KEY", "short")
	t.Setenv("VIANEXUS_API_KEY", testProviderKey)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONNECTOR_API_KEY")
	assert.NotContains(t, err.Error(), "short")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, "https://api.blueskyapi.com/v1", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 2, cfg.Upstream.MaxRetries)
	assert.Equal(t, "100-M", cfg.RateLimit)
	assert.Zero(t, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownGrace)
	assert.Contains(t, cfg.Origins(), "https://pro.openbb.co")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("VIANEXUS_TIMEOUT", "5s")
	t.Setenv("VIANEXUS_MAX_RETRIES", "1")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , https://b.example ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 1, cfg.Upstream.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestLoadRejectsOutOfRangeValues(t *testing.T) {
	setRequired(t)
	t.Setenv("VIANEXUS_MAX_RETRIES", "10")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIANEXUS_MAX_RETRIES")
}

func TestLoadRejectsUnknownEnvironment(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "qa")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENVIRONMENT")
}

func TestSecretNeverPrintsItsValue(t *testing.T) {
	s := Secret("super-secret-value")
	assert.NotContains(t, fmt.Sprintf("%v %s %#v", s, s, s), "super-secret-value")

	body, err := json.Marshal(struct{ Key Secret }{s})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "super-secret-value")

	assert.Equal(t, "super-secret-value", s.Reveal())
}
