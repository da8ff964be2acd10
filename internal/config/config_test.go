package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMainConfigDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "136.159.5.22:55921", cfg.RegistryAddr)
	assert.Equal(t, 5*time.Second, cfg.Keepalive())
	assert.Equal(t, 20*time.Second, cfg.Timeout())
	assert.Equal(t, 500*time.Millisecond, cfg.Poll())
	assert.False(t, cfg.Debug)

	_, _, ok := cfg.RateLimit()
	assert.False(t, ok, "rate observation is off by default")
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "config"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "config", "gossip.yml"), []byte(contents), 0644))
	return base
}

func TestLoadMainConfigFile(t *testing.T) {
	base := writeConfig(t, `
team_name: the gophers
registry_addr: 127.0.0.1:55921
keepalive_interval: 2s
peer_timeout: 8s
broadcast_poll: 200ms
gossip_rate_limit: 100/10s
metrics_addr: 127.0.0.1:9100
debug: true
`)
	cfg, err := LoadMainConfig(base)
	require.NoError(t, err)

	assert.Equal(t, "the gophers", cfg.TeamName)
	assert.Equal(t, "127.0.0.1:55921", cfg.RegistryAddr)
	assert.Equal(t, 2*time.Second, cfg.Keepalive())
	assert.Equal(t, 8*time.Second, cfg.Timeout())
	assert.Equal(t, 200*time.Millisecond, cfg.Poll())
	assert.True(t, cfg.Debug)

	limit, window, ok := cfg.RateLimit()
	require.True(t, ok)
	assert.Equal(t, int64(100), limit)
	assert.Equal(t, int64(10), window)
}

func TestLoadMainConfigRejectsBadDuration(t *testing.T) {
	base := writeConfig(t, "keepalive_interval: soon\n")
	_, err := LoadMainConfig(base)
	assert.Error(t, err)
}

func TestLoadMainConfigRejectsBadRegistryAddr(t *testing.T) {
	base := writeConfig(t, "registry_addr: not-an-endpoint\n")
	_, err := LoadMainConfig(base)
	assert.Error(t, err)
}

func TestLoadMainConfigRejectsBadRate(t *testing.T) {
	base := writeConfig(t, "gossip_rate_limit: fast\n")
	_, err := LoadMainConfig(base)
	assert.Error(t, err)
}

func TestLoadMainConfigRejectsBadYaml(t *testing.T) {
	base := writeConfig(t, "team_name: [unclosed\n")
	_, err := LoadMainConfig(base)
	assert.Error(t, err)
}
