// Package config loads the server settings from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/tecu23/chess-server/pkg/chess"
)

// Config holds every server setting. Environment variables override the
// file, which overrides the defaults.
type Config struct {
	Port  string `yaml:"port" env:"PORT" env-default:"8080" env-description:"HTTP listen port"`
	Debug bool   `yaml:"debug" env:"DEBUG" env-default:"false" env-description:"enable debug logging"`

	// FrontendOrigins lists the origins allowed to open a websocket. Empty
	// allows any origin.
	FrontendOrigins []string `yaml:"frontend-origins" env:"FRONTEND_ORIGINS" env-separator:"," env-description:"comma separated websocket origins"`

	TimeSyncInterval        time.Duration `yaml:"time-sync-interval" env:"TIME_SYNC_INTERVAL" env-default:"1s" env-description:"clock broadcast period, 0 disables"`
	DefaultStartMinutes     int64         `yaml:"default-start-minutes" env:"DEFAULT_START_MINUTES" env-default:"15" env-description:"initial time per side"`
	DefaultIncrementSeconds int64         `yaml:"default-increment-seconds" env:"DEFAULT_INCREMENT_SECONDS" env-default:"10" env-description:"increment per move"`
	SendBuffer              int           `yaml:"send-buffer" env:"SEND_BUFFER" env-default:"256" env-description:"outbound queue per connection"`

	NATS NATS `yaml:"nats"`
}

// NATS configures the optional event sink. An empty URL disables it.
type NATS struct {
	URL           string `yaml:"url" env:"NATS_URL" env-description:"NATS server for lifecycle events"`
	SubjectPrefix string `yaml:"subject-prefix" env:"NATS_SUBJECT_PREFIX" env-default:"chess" env-description:"NATS subject prefix"`
}

// Load reads the configuration. With an empty path only the environment is
// consulted.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = cleanenv.ReadConfig(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.TimeSyncInterval < 0 {
		return fmt.Errorf("time sync interval must not be negative, got %s", c.TimeSyncInterval)
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("send buffer must be positive, got %d", c.SendBuffer)
	}
	if _, err := c.TimeControl(); err != nil {
		return fmt.Errorf("default time control: %w", err)
	}
	return nil
}

// TimeControl is the time control for games created without one.
func (c *Config) TimeControl() (chess.TimeControl, error) {
	return chess.NewTimeControl(c.DefaultStartMinutes, c.DefaultIncrementSeconds)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// Usage describes the environment variables, for --help output.
func Usage() (string, error) {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return "", err
	}
	return desc, nil
}
