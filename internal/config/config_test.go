package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 {
		t.Errorf("unexpected pool defaults %d/%d", cfg.WorkerCount, cfg.MaxQueueSize)
	}
	if cfg.DocumentTimeout != 30*time.Second {
		t.Errorf("expected 30s budget, got %v", cfg.DocumentTimeout)
	}
	if cfg.MinSizeRatio != 1.1 || cfg.MinRepeatPages != 3 {
		t.Errorf("unexpected layout defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("DOCUMENT_TIMEOUT", "5s")
	t.Setenv("MIN_SIZE_RATIO", "1.25")
	t.Setenv("OUTLINE_API_KEY", "k")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" || cfg.WorkerCount != 8 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.DocumentTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.DocumentTimeout)
	}
	if got := cfg.Layout().MinSizeRatio; got != 1.25 {
		t.Errorf("expected layout ratio 1.25, got %v", got)
	}
	if cfg.APIKey != "k" {
		t.Errorf("expected api key, got %q", cfg.APIKey)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.json")
	if err := os.WriteFile(path, []byte(`{"port":"7000","min_repeat_pages":4}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7000" || cfg.MinRepeatPages != 4 {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.json"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ratio below one", func(c *Config) { c.MinSizeRatio = 0.9 }},
		{"negative tolerance", func(c *Config) { c.SizeTolerance = -1 }},
		{"title region zero", func(c *Config) { c.TitleRegionRatio = 0 }},
		{"title region above one", func(c *Config) { c.TitleRegionRatio = 1.5 }},
		{"repeat pages one", func(c *Config) { c.MinRepeatPages = 1 }},
		{"negative timeout", func(c *Config) { c.DocumentTimeout = -time.Second }},
	}
	for _, tt := range tests {
		cfg := base
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestValidateServer(t *testing.T) {
	t.Setenv("OUTLINE_API_KEY", "")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected missing api key error")
	}
	cfg.APIKey = "k"
	cfg.PathstoreURL = "http://localhost:8080"
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected missing pathstore key error")
	}
	cfg.PathstoreAPIKey = "p"
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (Config{LogLevel: in}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
