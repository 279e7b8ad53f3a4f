package config

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"KILLRWEATHER_BROKERS":          "kafka-1:9092, kafka-2:9092",
				"KILLRWEATHER_TOPIC":            "env.raw",
				"KILLRWEATHER_GROUP":            "env.group",
				"KILLRWEATHER_CHECKPOINT_DIR":   "/env/ckpt",
				"KILLRWEATHER_DATA_DIR":         "/env/load",
				"KILLRWEATHER_DATA_FILES":       "/env/a.csv,/env/b.csv",
				"KILLRWEATHER_METRICS_ADDR":     ":9108",
				"KILLRWEATHER_WATCH":            "true",
				"KILLRWEATHER_SHUTDOWN_TIMEOUT": "8s",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Brokers:         []string{"kafka-1:9092", "kafka-2:9092"},
				Topic:           "env.raw",
				Group:           "env.group",
				CheckpointDir:   "/env/ckpt",
				DataDir:         "/env/load",
				DataFiles:       []string{"/env/a.csv", "/env/b.csv"},
				MetricsAddr:     ":9108",
				Watch:           true,
				ShutdownTimeout: 8 * time.Second,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"KILLRWEATHER_TOPIC": "env.raw",
				"KILLRWEATHER_GROUP": "env.group",
			},
			changed: map[string]bool{"topic": true},
			initial: Config{
				Topic: "flag.raw",
			},
			expected: Config{
				Topic: "flag.raw",
				Group: "env.group",
			},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"KILLRWEATHER_SHUTDOWN_TIMEOUT": "not-a-duration",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
		{
			name: "invalid bool is ignored",
			envVars: map[string]string{
				"KILLRWEATHER_WATCH": "maybe",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a , ,b,")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("splitList = %v, want [a b]", got)
	}
}
