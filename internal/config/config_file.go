package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to keep the TOML
// friendly.
type FileConfig struct {
	Brokers         []string `toml:"brokers"`
	Topic           string   `toml:"topic"`
	Group           string   `toml:"group"`
	CheckpointDir   string   `toml:"checkpoint_dir"`
	DataDir         string   `toml:"data_dir"`
	DataFiles       []string `toml:"data_files"`
	ShutdownTimeout string   `toml:"shutdown_timeout"`
	Watch           *bool    `toml:"watch"`
	MetricsAddr     string   `toml:"metrics_addr"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.killrweather/config.toml if the user home
// directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".killrweather", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setStrings("brokers", fc.Brokers, &cfg.Brokers)
	s.setString("topic", fc.Topic, &cfg.Topic)
	s.setString("group", fc.Group, &cfg.Group)
	s.setString("checkpoint-dir", fc.CheckpointDir, &cfg.CheckpointDir)
	s.setString("data-dir", fc.DataDir, &cfg.DataDir)
	s.setStrings("data-file", fc.DataFiles, &cfg.DataFiles)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	return s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
