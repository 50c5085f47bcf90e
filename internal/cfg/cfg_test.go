package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so test processes with stray
// environments stay deterministic.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CONFIG_FILE", "MODEL_DIR", "DATA_PATH", "REPORTS_DIR", "DATASET",
		"THRESHOLD", "TEST_SIZE", "TREES", "MAX_DEPTH", "MIN_LEAF",
		"MIN_POSITIVES", "SEED", "SERVER_PORT", "METRICS_PORT",
		"STATS_STREAM_INTERVAL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.ModelDir != "models" {
		t.Errorf("expected default model dir models, got %s", settings.ModelDir)
	}
	if settings.Threshold != 0.5 {
		t.Errorf("expected default threshold 0.5, got %f", settings.Threshold)
	}
	if settings.TestSize != 0.2 {
		t.Errorf("expected default test size 0.2, got %f", settings.TestSize)
	}
	if settings.Trees != 100 || settings.MaxDepth != 10 || settings.MinLeaf != 2 {
		t.Errorf("unexpected default model params: %+v", settings)
	}
	if settings.Seed != 42 {
		t.Errorf("expected default seed 42, got %d", settings.Seed)
	}
	if settings.ServerPort != 8000 || settings.MetricsPort != 9090 {
		t.Errorf("unexpected default ports: %d / %d", settings.ServerPort, settings.MetricsPort)
	}
	if settings.StatsStreamInterval != 5*time.Second {
		t.Errorf("expected default stream interval 5s, got %v", settings.StatsStreamInterval)
	}
}

func TestLoad_FromYAML(t *testing.T) {
	clearEnv(t)

	content := `
model:
  trees: 250
  maxDepth: 12
  minLeaf: 3
  minPositives: 20
  seed: 7
train:
  threshold: 0.35
  testSize: 0.25
  dataset: data/creditcard.csv
paths:
  modelDir: /tmp/models
  reportsDir: /tmp/reports
server:
  port: 8080
  metricsPort: 9100
  statsStreamInterval: 2s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.Trees != 250 || settings.MaxDepth != 12 || settings.MinLeaf != 3 {
		t.Errorf("unexpected model params: %+v", settings)
	}
	if settings.MinPositives != 20 || settings.Seed != 7 {
		t.Errorf("unexpected minPositives/seed: %d / %d", settings.MinPositives, settings.Seed)
	}
	if settings.Threshold != 0.35 || settings.TestSize != 0.25 {
		t.Errorf("unexpected train params: %f / %f", settings.Threshold, settings.TestSize)
	}
	if settings.Dataset != "data/creditcard.csv" {
		t.Errorf("unexpected dataset: %s", settings.Dataset)
	}
	if settings.ModelDir != "/tmp/models" || settings.ReportsDir != "/tmp/reports" {
		t.Errorf("unexpected paths: %s / %s", settings.ModelDir, settings.ReportsDir)
	}
	if settings.ServerPort != 8080 || settings.MetricsPort != 9100 {
		t.Errorf("unexpected ports: %d / %d", settings.ServerPort, settings.MetricsPort)
	}
	if settings.StatsStreamInterval != 2*time.Second {
		t.Errorf("unexpected stream interval: %v", settings.StatsStreamInterval)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	content := `
train:
  threshold: 0.35
server:
  port: 8080
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("THRESHOLD", "0.7")
	t.Setenv("TREES", "50")

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.Threshold != 0.7 {
		t.Errorf("expected env threshold 0.7 to win, got %f", settings.Threshold)
	}
	if settings.Trees != 50 {
		t.Errorf("expected env trees 50, got %d", settings.Trees)
	}
	if settings.ServerPort != 8080 {
		t.Errorf("expected file port 8080 kept, got %d", settings.ServerPort)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"threshold too high", map[string]string{"THRESHOLD": "1.5"}},
		{"threshold zero", map[string]string{"THRESHOLD": "0"}},
		{"test size too large", map[string]string{"TEST_SIZE": "0.9"}},
		{"negative trees", map[string]string{"TREES": "-5"}},
		{"excessive depth", map[string]string{"MAX_DEPTH": "100"}},
		{"privileged port", map[string]string{"SERVER_PORT": "80"}},
		{"port collision", map[string]string{"SERVER_PORT": "9090"}},
		{"stream interval too short", map[string]string{"STATS_STREAM_INTERVAL": "10ms"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}
