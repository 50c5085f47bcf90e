// Package cfg loads service configuration from a YAML file, environment
// variables, or both, with environment values taking precedence.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the resolved configuration for both the serving daemon and
// the training pipeline.
type Settings struct {
	ModelDir   string
	DataPath   string
	ReportsDir string
	Dataset    string

	Threshold float64
	TestSize  float64

	Trees        int
	MaxDepth     int
	MinLeaf      int
	MinPositives int
	Seed         int64

	ServerPort          int
	MetricsPort         int
	StatsStreamInterval time.Duration
}

// ConfigFile mirrors the YAML layout of the params file.
type ConfigFile struct {
	Model struct {
		Trees        int   `yaml:"trees"`
		MaxDepth     int   `yaml:"maxDepth"`
		MinLeaf      int   `yaml:"minLeaf"`
		MinPositives int   `yaml:"minPositives"`
		Seed         int64 `yaml:"seed"`
	} `yaml:"model"`

	Train struct {
		Threshold float64 `yaml:"threshold"`
		TestSize  float64 `yaml:"testSize"`
		Dataset   string  `yaml:"dataset"`
	} `yaml:"train"`

	Paths struct {
		ModelDir   string `yaml:"modelDir"`
		ReportsDir string `yaml:"reportsDir"`
		DataPath   string `yaml:"dataPath"`
	} `yaml:"paths"`

	Server struct {
		Port                int    `yaml:"port"`
		MetricsPort         int    `yaml:"metricsPort"`
		StatsStreamInterval string `yaml:"statsStreamInterval"`
	} `yaml:"server"`
}

// Load resolves settings from the file named by CONFIG_FILE when set, else
// from environment variables alone. Environment variables override file
// values either way.
func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	streamInterval, err := time.ParseDuration(config.Server.StatsStreamInterval)
	if err != nil {
		streamInterval = 5 * time.Second
	}

	settings := Settings{
		ModelDir:            getEnvOrDefault("MODEL_DIR", stringOr(config.Paths.ModelDir, "models")),
		DataPath:            getEnvOrDefault("DATA_PATH", config.Paths.DataPath),
		ReportsDir:          getEnvOrDefault("REPORTS_DIR", stringOr(config.Paths.ReportsDir, "reports")),
		Dataset:             getEnvOrDefault("DATASET", config.Train.Dataset),
		Threshold:           getFloatFromEnvOrConfig("THRESHOLD", config.Train.Threshold, 0.5),
		TestSize:            getFloatFromEnvOrConfig("TEST_SIZE", config.Train.TestSize, 0.2),
		Trees:               getIntFromEnvOrConfig("TREES", config.Model.Trees, 100),
		MaxDepth:            getIntFromEnvOrConfig("MAX_DEPTH", config.Model.MaxDepth, 10),
		MinLeaf:             getIntFromEnvOrConfig("MIN_LEAF", config.Model.MinLeaf, 2),
		MinPositives:        getIntFromEnvOrConfig("MIN_POSITIVES", config.Model.MinPositives, 10),
		Seed:                getInt64FromEnvOrConfig("SEED", config.Model.Seed, 42),
		ServerPort:          getIntFromEnvOrConfig("SERVER_PORT", config.Server.Port, 8000),
		MetricsPort:         getIntFromEnvOrConfig("METRICS_PORT", config.Server.MetricsPort, 9090),
		StatsStreamInterval: getDurationOrDefault("STATS_STREAM_INTERVAL", streamInterval),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelDir:            getEnvOrDefault("MODEL_DIR", "models"),
		DataPath:            os.Getenv("DATA_PATH"), // optional
		ReportsDir:          getEnvOrDefault("REPORTS_DIR", "reports"),
		Dataset:             os.Getenv("DATASET"),
		Threshold:           getFloatOrDefault("THRESHOLD", 0.5),
		TestSize:            getFloatOrDefault("TEST_SIZE", 0.2),
		Trees:               getIntOrDefault("TREES", 100),
		MaxDepth:            getIntOrDefault("MAX_DEPTH", 10),
		MinLeaf:             getIntOrDefault("MIN_LEAF", 2),
		MinPositives:        getIntOrDefault("MIN_POSITIVES", 10),
		Seed:                getInt64OrDefault("SEED", 42),
		ServerPort:          getIntOrDefault("SERVER_PORT", 8000),
		MetricsPort:         getIntOrDefault("METRICS_PORT", 9090),
		StatsStreamInterval: getDurationOrDefault("STATS_STREAM_INTERVAL", 5*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func stringOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getInt64FromEnvOrConfig(key string, configValue, defaultValue int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs validation of configuration values.
func validateSettings(settings *Settings) error {
	if settings.ModelDir == "" {
		return fmt.Errorf("model directory cannot be empty")
	}
	if settings.Threshold <= 0 || settings.Threshold >= 1 {
		return fmt.Errorf("threshold must be between 0 and 1 exclusive, got %f", settings.Threshold)
	}
	if settings.TestSize <= 0 || settings.TestSize > 0.5 {
		return fmt.Errorf("test size must be between 0 and 0.5, got %f", settings.TestSize)
	}
	if settings.Trees <= 0 || settings.Trees > 2000 {
		return fmt.Errorf("tree count must be between 1 and 2000, got %d", settings.Trees)
	}
	if settings.MaxDepth <= 0 || settings.MaxDepth > 64 {
		return fmt.Errorf("max depth must be between 1 and 64, got %d", settings.MaxDepth)
	}
	if settings.MinLeaf <= 0 {
		return fmt.Errorf("min leaf size must be positive, got %d", settings.MinLeaf)
	}
	if settings.MinPositives <= 0 {
		return fmt.Errorf("min positives must be positive, got %d", settings.MinPositives)
	}
	if settings.ServerPort < 1024 || settings.ServerPort > 65535 {
		return fmt.Errorf("server port must be between 1024 and 65535, got %d", settings.ServerPort)
	}
	if settings.MetricsPort < 1024 || settings.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", settings.MetricsPort)
	}
	if settings.ServerPort == settings.MetricsPort {
		return fmt.Errorf("server and metrics ports must differ, both are %d", settings.ServerPort)
	}
	if settings.StatsStreamInterval < 100*time.Millisecond || settings.StatsStreamInterval > time.Minute {
		return fmt.Errorf("stats stream interval must be between 100ms and 1m, got %v", settings.StatsStreamInterval)
	}
	return nil
}
