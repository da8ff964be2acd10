package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"gossip_chat/internal/utils"
)

// MainConfig is the node's full configuration. A yaml file under
// <basePath>/config/gossip.yml overrides the defaults; the positional
// command-line arguments override team name and port on top of that.
type MainConfig struct {
	TeamName          string `yaml:"team_name" validate:"required"`
	Port              uint16 `yaml:"port"`
	RegistryAddr      string `yaml:"registry_addr" validate:"required,hostname_port"`
	KeepaliveInterval string `yaml:"keepalive_interval" validate:"required"`
	PeerTimeout       string `yaml:"peer_timeout" validate:"required"`
	BroadcastPoll     string `yaml:"broadcast_poll" validate:"required"`
	GossipRateLimit   string `yaml:"gossip_rate_limit"`
	MetricsAddr       string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	LogPath           string `yaml:"log_path"`
	CodePath          string `yaml:"code_path"`
	Debug             bool   `yaml:"debug"`
}

// LoadMainConfig reads the configuration file and returns the configuration
// object. A missing file is not an error; the defaults apply.
func LoadMainConfig(basePath string) (*MainConfig, error) {
	cfg := MainConfig{
		TeamName:          "gossip_chat",
		Port:              55920,
		RegistryAddr:      "136.159.5.22:55921",
		KeepaliveInterval: "5s",
		PeerTimeout:       "20s",
		BroadcastPoll:     "500ms",
		GossipRateLimit:   "",
		MetricsAddr:       "",
		LogPath:           "",
		CodePath:          ".",
		Debug:             false,
	}

	if basePath == "" {
		exePath, err := os.Executable()
		if err != nil {
			return nil, err
		}
		basePath = filepath.Dir(exePath)
	}
	configPath := filepath.Join(basePath, "config", "gossip.yml")

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the duration and rate strings.
func (c *MainConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for name, s := range map[string]string{
		"keepalive_interval": c.KeepaliveInterval,
		"peer_timeout":       c.PeerTimeout,
		"broadcast_poll":     c.BroadcastPoll,
	} {
		if _, err := time.ParseDuration(s); err != nil {
			return fmt.Errorf("invalid config %s: %w", name, err)
		}
	}
	if c.GossipRateLimit != "" {
		if _, _, err := utils.ParseRate(c.GossipRateLimit); err != nil {
			return fmt.Errorf("invalid config gossip_rate_limit: %w", err)
		}
	}
	return nil
}

// Durations the validated strings parse to.

func (c *MainConfig) Keepalive() time.Duration {
	d, _ := time.ParseDuration(c.KeepaliveInterval)
	return d
}

func (c *MainConfig) Timeout() time.Duration {
	d, _ := time.ParseDuration(c.PeerTimeout)
	return d
}

func (c *MainConfig) Poll() time.Duration {
	d, _ := time.ParseDuration(c.BroadcastPoll)
	return d
}

// RateLimit returns the parsed gossip rate limit, or ok=false when rate
// observation is disabled.
func (c *MainConfig) RateLimit() (limit int64, windowSeconds int64, ok bool) {
	if c.GossipRateLimit == "" {
		return 0, 0, false
	}
	limit, windowSeconds, err := utils.ParseRate(c.GossipRateLimit)
	if err != nil {
		return 0, 0, false
	}
	return limit, windowSeconds, true
}
