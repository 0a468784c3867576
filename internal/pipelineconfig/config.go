// Package pipelineconfig assembles the environment-driven settings for one
// pipeline process.
package pipelineconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultInterval is the default duration between pipeline cycles
	DefaultInterval = 6 * time.Hour

	// MinInterval prevents hammering the source API
	MinInterval = 15 * time.Minute
	// MaxInterval keeps the site reasonably fresh
	MaxInterval = 24 * time.Hour
)

// Config holds the pipeline-level settings. Collaborator packages (twitter,
// translate) load their own configuration.
type Config struct {
	Interval time.Duration

	// Dedup
	IndexPath           string
	RetentionDays       int
	SimilarityThreshold float64

	// Publishing
	SiteDir     string
	ContentDir  string
	FallbackDir string
	BuildSite   bool

	// Notifications
	SlackWebhookURL string
	AlertWebhookURL string
}

// New reads the pipeline configuration from the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	interval := DefaultInterval
	if raw := os.Getenv("PIPELINE_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PIPELINE_INTERVAL %q: %w", raw, err)
		}
		interval = parsed
	}

	retentionDays := 30
	if raw := os.Getenv("DEDUP_RETENTION_DAYS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DEDUP_RETENTION_DAYS %q: %w", raw, err)
		}
		retentionDays = parsed
	}

	threshold := 0.85
	if raw := os.Getenv("DEDUP_SIMILARITY_THRESHOLD"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid DEDUP_SIMILARITY_THRESHOLD %q: %w", raw, err)
		}
		threshold = parsed
	}

	siteDir := getEnvOrDefault("SITE_DIR", "site")

	config := &Config{
		Interval:            interval,
		IndexPath:           getEnvOrDefault("DEDUP_INDEX_PATH", "data/processed_tweets.json"),
		RetentionDays:       retentionDays,
		SimilarityThreshold: threshold,
		SiteDir:             siteDir,
		ContentDir:          getEnvOrDefault("CONTENT_DIR", siteDir+"/content/posts"),
		FallbackDir:         getEnvOrDefault("CONTENT_FALLBACK_DIR", "data/pending-posts"),
		BuildSite:           getEnvOrDefault("BUILD_SITE", "true") == "true",
		SlackWebhookURL:     os.Getenv("SLACK_WEBHOOK_URL"),
		AlertWebhookURL:     os.Getenv("ALERT_WEBHOOK_URL"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Interval < MinInterval || c.Interval > MaxInterval {
		return fmt.Errorf("interval must be between %v and %v", MinInterval, MaxInterval)
	}
	if c.IndexPath == "" {
		return fmt.Errorf("dedup index path is required")
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("retention days must be positive")
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1]")
	}
	if c.ContentDir == "" {
		return fmt.Errorf("content directory is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
