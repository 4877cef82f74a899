package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dgallion1/docoutline/internal/layout"
)

type Config struct {
	Port string

	// Optional pathstore sink; publishing is off when the URL is empty.
	PathstoreURL    string
	PathstoreAPIKey string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Per-document time budget.
	DocumentTimeout time.Duration

	// CLI batch fan-out.
	BatchConcurrency int

	LogLevel    string
	StatsWindow time.Duration

	// Layout tuning
	MinHeadingChars  int
	MinSizeRatio     float64
	SizeTolerance    float64
	MinRepeatPages   int
	TitleRegionRatio float64
}

func setDefaults(v *viper.Viper) {
	d := layout.DefaultConfig()

	v.SetDefault("PORT", "8090")
	v.SetDefault("PATHSTORE_URL", "")
	v.SetDefault("PATHSTORE_API_KEY", "")
	v.SetDefault("OUTLINE_API_KEY", "")
	v.SetDefault("WORKER_COUNT", 4)
	v.SetDefault("MAX_QUEUE_SIZE", 100)
	v.SetDefault("MAX_UPLOAD_BYTES", 52428800) // 50MB
	v.SetDefault("JOB_TTL", time.Hour)
	v.SetDefault("DOCUMENT_TIMEOUT", 30*time.Second)
	v.SetDefault("BATCH_CONCURRENCY", 4)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STATS_WINDOW", time.Hour)
	v.SetDefault("MIN_HEADING_CHARS", d.MinHeadingChars)
	v.SetDefault("MIN_SIZE_RATIO", d.MinSizeRatio)
	v.SetDefault("SIZE_TOLERANCE", d.SizeTolerance)
	v.SetDefault("MIN_REPEAT_PAGES", d.MinRepeatPages)
	v.SetDefault("TITLE_REGION_RATIO", d.TitleRegionRatio)
}

// Load reads configuration from defaults, an optional file named by
// CONFIG_FILE, and the environment, in increasing precedence.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) Config {
	cfg := Config{
		Port: v.GetString("PORT"),

		PathstoreURL:    v.GetString("PATHSTORE_URL"),
		PathstoreAPIKey: v.GetString("PATHSTORE_API_KEY"),

		APIKey: v.GetString("OUTLINE_API_KEY"),

		WorkerCount:  v.GetInt("WORKER_COUNT"),
		MaxQueueSize: v.GetInt("MAX_QUEUE_SIZE"),

		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),

		JobTTL:          v.GetDuration("JOB_TTL"),
		DocumentTimeout: v.GetDuration("DOCUMENT_TIMEOUT"),

		BatchConcurrency: v.GetInt("BATCH_CONCURRENCY"),

		LogLevel:    v.GetString("LOG_LEVEL"),
		StatsWindow: v.GetDuration("STATS_WINDOW"),

		MinHeadingChars:  v.GetInt("MIN_HEADING_CHARS"),
		MinSizeRatio:     v.GetFloat64("MIN_SIZE_RATIO"),
		SizeTolerance:    v.GetFloat64("SIZE_TOLERANCE"),
		MinRepeatPages:   v.GetInt("MIN_REPEAT_PAGES"),
		TitleRegionRatio: v.GetFloat64("TITLE_REGION_RATIO"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// Validate checks settings every entry point needs.
func (c Config) Validate() error {
	if c.DocumentTimeout < 0 {
		return fmt.Errorf("DOCUMENT_TIMEOUT must not be negative")
	}
	if c.MinSizeRatio < 1 {
		return fmt.Errorf("MIN_SIZE_RATIO must be at least 1, got %v", c.MinSizeRatio)
	}
	if c.SizeTolerance < 0 {
		return fmt.Errorf("SIZE_TOLERANCE must not be negative")
	}
	if c.TitleRegionRatio <= 0 || c.TitleRegionRatio > 1 {
		return fmt.Errorf("TITLE_REGION_RATIO must be in (0, 1], got %v", c.TitleRegionRatio)
	}
	if c.MinRepeatPages < 2 {
		return fmt.Errorf("MIN_REPEAT_PAGES must be at least 2, got %d", c.MinRepeatPages)
	}
	return nil
}

// ValidateServer adds the checks only the HTTP service needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("OUTLINE_API_KEY is required")
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	return nil
}

// Layout maps the tuning keys onto the heuristic configuration.
func (c Config) Layout() layout.Config {
	l := layout.DefaultConfig()
	l.MinHeadingChars = c.MinHeadingChars
	l.MinSizeRatio = c.MinSizeRatio
	l.SizeTolerance = c.SizeTolerance
	l.MinRepeatPages = c.MinRepeatPages
	l.TitleRegionRatio = c.TitleRegionRatio
	return l
}

// SlogLevel parses LogLevel, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
