// Package config holds the node configuration with file, environment, and
// flag layering. Precedence: flags beat environment, environment beats file,
// file beats defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// Defaults for the raw-data stream.
const (
	DefaultTopic = "killrweather.raw"
	DefaultGroup = "killrweather.group"
)

// Config holds the node configuration.
type Config struct {
	// Brokers are the message-queue bootstrap addresses.
	Brokers []string

	// Topic is the raw-data topic records are published to.
	Topic string

	// Group is the consumer group the compute engine joins. It also travels
	// with each published record as the message key.
	Group string

	// CheckpointDir is the durability location registered with the engine.
	CheckpointDir string

	// DataDir is scanned for raw data files when DataFiles is empty, and
	// watched for new files when Watch is set.
	DataDir string

	// DataFiles lists the raw sources explicitly, fed in this order.
	DataFiles []string

	// ShutdownTimeout is the bounded termination wait per worker.
	ShutdownTimeout time.Duration

	// Watch keeps streaming files dropped into DataDir after the initial
	// feed.
	Watch bool

	// MetricsAddr serves Prometheus metrics when non-empty.
	MetricsAddr string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Brokers:         []string{"localhost:9092"},
		Topic:           DefaultTopic,
		Group:           DefaultGroup,
		CheckpointDir:   "./data/checkpoints",
		DataDir:         "./data/load",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("at least one broker is required")
	}
	if c.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if c.Group == "" {
		return fmt.Errorf("group is required")
	}
	if c.CheckpointDir == "" {
		return fmt.Errorf("checkpoint-dir is required")
	}
	if len(c.DataFiles) == 0 && c.DataDir == "" {
		return fmt.Errorf("data-dir or data-file is required")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// Sources returns the raw data files to feed, in feed order: the explicit
// file list if given, otherwise the data directory's files sorted by name.
func (c *Config) Sources() ([]string, error) {
	if len(c.DataFiles) > 0 {
		return c.DataFiles, nil
	}

	entries, err := os.ReadDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	var sources []string
	for _, e := range entries {
		if e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		sources = append(sources, filepath.Join(c.DataDir, e.Name()))
	}
	sort.Strings(sources)
	return sources, nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a string-slice value if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false. Used for environment
// variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return
	}
	*dst = b
}
