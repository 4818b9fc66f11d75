package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config holds the metaqual API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Index    IndexConfig    `yaml:"index"`
	Timeline TimelineConfig `yaml:"timeline"`
	Labels   LabelsConfig   `yaml:"labels"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IndexConfig holds search index connection and naming settings.
type IndexConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	CollectionsIndex string   `yaml:"collections_index"`
	MaterialsIndex   string   `yaml:"materials_index"`
	MaxTreeNodes     int      `yaml:"max_tree_nodes"`
	BucketLimit      int      `yaml:"bucket_limit"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// TimelineConfig holds snapshot database settings.
type TimelineConfig struct {
	DSN string `yaml:"dsn"`
}

// LabelsConfig holds metadata-set label service settings.
type LabelsConfig struct {
	BaseURL     string `yaml:"base_url"`
	MetadataSet string `yaml:"metadata_set"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// SnapshotConfig holds the periodic capture settings. Roots are the
// collection tree roots snapshotted each day.
type SnapshotConfig struct {
	Enabled     bool     `yaml:"enabled"`
	IntervalSec int      `yaml:"interval_sec"`
	Roots       []string `yaml:"roots"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.CollectionsIndex == "" {
		c.Index.CollectionsIndex = "metaqual:collections:idx"
	}
	if c.Index.MaterialsIndex == "" {
		c.Index.MaterialsIndex = "metaqual:materials:idx"
	}
	if c.Index.MaxTreeNodes <= 0 {
		c.Index.MaxTreeNodes = 10000
	}
	if c.Index.BucketLimit <= 0 {
		c.Index.BucketLimit = 10000
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Labels.MetadataSet == "" {
		c.Labels.MetadataSet = "mds_oeh"
	}
	if c.Labels.CacheTTLSec <= 0 {
		c.Labels.CacheTTLSec = 3600
	}
	if c.Labels.TimeoutSec <= 0 {
		c.Labels.TimeoutSec = 10
	}
	if c.Snapshot.IntervalSec <= 0 {
		c.Snapshot.IntervalSec = 3600
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Index.Addrs) == 0 {
		return fmt.Errorf("index.addrs is required")
	}
	if c.Timeline.DSN == "" {
		return fmt.Errorf("timeline.dsn is required")
	}
	if c.Labels.BaseURL == "" {
		return fmt.Errorf("labels.base_url is required")
	}
	if c.Snapshot.Enabled && len(c.Snapshot.Roots) == 0 {
		return fmt.Errorf("snapshot.roots is required when snapshot.enabled is true")
	}
	for _, root := range c.Snapshot.Roots {
		if _, err := uuid.Parse(root); err != nil {
			return fmt.Errorf("snapshot.roots entry %q is not a UUID", root)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
