package config

import (
	"os"
	"strings"
)

// ApplyEnvConfig applies configuration from environment variables
// (KILLRWEATHER_*). It respects flags that have been explicitly set
// (changed map). Returns an error if a variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if v := os.Getenv("KILLRWEATHER_BROKERS"); v != "" {
		s.setStrings("brokers", splitList(v), &cfg.Brokers)
	}
	s.setString("topic", os.Getenv("KILLRWEATHER_TOPIC"), &cfg.Topic)
	s.setString("group", os.Getenv("KILLRWEATHER_GROUP"), &cfg.Group)
	s.setString("checkpoint-dir", os.Getenv("KILLRWEATHER_CHECKPOINT_DIR"), &cfg.CheckpointDir)
	s.setString("data-dir", os.Getenv("KILLRWEATHER_DATA_DIR"), &cfg.DataDir)
	if v := os.Getenv("KILLRWEATHER_DATA_FILES"); v != "" {
		s.setStrings("data-file", splitList(v), &cfg.DataFiles)
	}
	s.setString("metrics-addr", os.Getenv("KILLRWEATHER_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setBoolFromString("watch", os.Getenv("KILLRWEATHER_WATCH"), &cfg.Watch)

	return s.setDuration("shutdown-timeout", os.Getenv("KILLRWEATHER_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
