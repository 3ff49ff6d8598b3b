package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/contentcache/contentcache/internal/logging"
	"github.com/contentcache/contentcache/internal/metrics"
	"github.com/contentcache/contentcache/pkg/retry"
)

// Configuration represents the complete application configuration.
type Configuration struct {
	Cache      CacheConfig    `yaml:"cache"`
	Logging    logging.Config `yaml:"logging"`
	Metrics    metrics.Config `yaml:"metrics"`
	WriteRetry retry.Config   `yaml:"write_retry"`
}

// CacheConfig represents cache engine configuration.
type CacheConfig struct {
	// MaxSize is a human-readable byte count, e.g. "64MB".
	MaxSize string `yaml:"max_size"`

	// TypePriorities overrides or extends the built-in per-extension
	// priority table. Keys are normalised to leading-dot lowercase;
	// values are clamped to [0,1] by the engine.
	TypePriorities map[string]float64 `yaml:"type_priorities"`
}

// NewDefault returns a configuration with sensible defaults.
func NewDefault() *Configuration {
	return &Configuration{
		Cache: CacheConfig{
			MaxSize: "64MB",
		},
		Logging:    logging.DefaultConfig(),
		Metrics:    *metrics.DefaultConfig(),
		WriteRetry: retry.DefaultConfig(),
	}
}

// LoadFromFile loads configuration from a YAML file.
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadFromEnv applies CONTENTCACHE_* environment overrides.
func (c *Configuration) LoadFromEnv() error {
	if val := os.Getenv("CONTENTCACHE_MAX_SIZE"); val != "" {
		c.Cache.MaxSize = val
	}
	if val := os.Getenv("CONTENTCACHE_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv("CONTENTCACHE_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}
	if val := os.Getenv("CONTENTCACHE_LOG_FILE"); val != "" {
		c.Logging.File = val
	}
	if val := os.Getenv("CONTENTCACHE_METRICS_ENABLED"); val != "" {
		c.Metrics.Enabled = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("CONTENTCACHE_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Metrics.Port = port
		}
	}

	return nil
}

// SaveToFile writes the configuration to a YAML file.
func (c *Configuration) SaveToFile(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Configuration) Validate() error {
	size, err := ParseSize(c.Cache.MaxSize)
	if err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_size must be greater than 0")
	}

	for ext, priority := range c.Cache.TypePriorities {
		if priority < 0 || priority > 1 {
			return fmt.Errorf("type priority for %q must be in [0,1], got %g", ext, priority)
		}
	}

	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	levelValid := false
	for _, level := range validLevels {
		if strings.ToLower(c.Logging.Level) == level {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics port must be in (0,65535], got %d", c.Metrics.Port)
	}

	return nil
}

// MaxSizeBytes returns the parsed cache bound.
func (c *Configuration) MaxSizeBytes() (int64, error) {
	return ParseSize(c.Cache.MaxSize)
}

// ParseSize parses a human-readable byte count such as "64MB", "1GB",
// "512KB", or a bare number of bytes. Units are powers of 1024.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	upper := strings.ToUpper(s)
	multiplier := int64(1)
	switch {
	case strings.HasSuffix(upper, "TB"):
		multiplier = 1 << 40
		upper = strings.TrimSuffix(upper, "TB")
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1 << 30
		upper = strings.TrimSuffix(upper, "GB")
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1 << 20
		upper = strings.TrimSuffix(upper, "MB")
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1 << 10
		upper = strings.TrimSuffix(upper, "KB")
	case strings.HasSuffix(upper, "B"):
		upper = strings.TrimSuffix(upper, "B")
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(upper), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("size must not be negative: %q", s)
	}

	return int64(value * float64(multiplier)), nil
}
