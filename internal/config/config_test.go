package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	if cfg.Cache.MaxSize != "64MB" {
		t.Errorf("expected MaxSize 64MB, got %s", cfg.Cache.MaxSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("expected metrics enabled by default")
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if cfg.WriteRetry.MaxAttempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.WriteRetry.MaxAttempts)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"64MB", 64 << 20, false},
		{"1GB", 1 << 30, false},
		{"512KB", 512 << 10, false},
		{"2TB", 2 << 40, false},
		{"100B", 100, false},
		{"4096", 4096, false},
		{"1.5MB", 1536 << 10, false},
		{" 8MB ", 8 << 20, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-1MB", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMaxSizeBytes(t *testing.T) {
	cfg := NewDefault()
	size, err := cfg.MaxSizeBytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 64<<20 {
		t.Errorf("expected 64MiB, got %d", size)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := NewDefault()
	cfg.Cache.MaxSize = "128MB"
	cfg.Cache.TypePriorities = map[string]float64{".cfg": 0.95, ".bin": 0.05}
	cfg.Logging.Level = "debug"

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := NewDefault()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Cache.MaxSize != "128MB" {
		t.Errorf("expected MaxSize 128MB, got %s", loaded.Cache.MaxSize)
	}
	if loaded.Cache.TypePriorities[".cfg"] != 0.95 {
		t.Errorf("expected .cfg priority 0.95, got %g", loaded.Cache.TypePriorities[".cfg"])
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", loaded.Logging.Level)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := NewDefault()
	if err := cfg.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("CONTENTCACHE_MAX_SIZE", "256MB")
	os.Setenv("CONTENTCACHE_LOG_LEVEL", "error")
	os.Setenv("CONTENTCACHE_METRICS_ENABLED", "false")
	os.Setenv("CONTENTCACHE_METRICS_PORT", "9999")
	defer func() {
		os.Unsetenv("CONTENTCACHE_MAX_SIZE")
		os.Unsetenv("CONTENTCACHE_LOG_LEVEL")
		os.Unsetenv("CONTENTCACHE_METRICS_ENABLED")
		os.Unsetenv("CONTENTCACHE_METRICS_PORT")
	}()

	cfg := NewDefault()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Cache.MaxSize != "256MB" {
		t.Errorf("expected MaxSize 256MB, got %s", cfg.Cache.MaxSize)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected log level error, got %s", cfg.Logging.Level)
	}
	if cfg.Metrics.Enabled {
		t.Error("expected metrics disabled")
	}
	if cfg.Metrics.Port != 9999 {
		t.Errorf("expected metrics port 9999, got %d", cfg.Metrics.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Configuration)
	}{
		{"bad size", func(c *Configuration) { c.Cache.MaxSize = "lots" }},
		{"zero size", func(c *Configuration) { c.Cache.MaxSize = "0" }},
		{"priority above one", func(c *Configuration) {
			c.Cache.TypePriorities = map[string]float64{".cfg": 1.5}
		}},
		{"priority below zero", func(c *Configuration) {
			c.Cache.TypePriorities = map[string]float64{".cfg": -0.1}
		}},
		{"bad log level", func(c *Configuration) { c.Logging.Level = "loud" }},
		{"bad metrics port", func(c *Configuration) { c.Metrics.Port = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
