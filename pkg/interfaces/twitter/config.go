package twitter

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type TwitterConfig struct {
	// API Authentication
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	BearerToken       string

	// API Endpoints
	BaseURL      string
	UserEndpoint string

	// Source account whose timeline feeds the pipeline
	SourceUsername string

	// Rate Limiting
	RateLimit  int // requests per window
	RateWindow int // window length in minutes

	// Fetch settings
	MaxResults int

	// General Config
	Logger *logrus.Logger
}

func NewTwitterConfig() (*TwitterConfig, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	rateLimit, _ := strconv.Atoi(getEnvOrDefault("TWITTER_RATE_LIMIT", "180"))
	rateWindow, _ := strconv.Atoi(getEnvOrDefault("TWITTER_RATE_WINDOW", "15"))
	maxResults, _ := strconv.Atoi(getEnvOrDefault("TWITTER_MAX_RESULTS", "25"))

	config := &TwitterConfig{
		ConsumerKey:       os.Getenv("TWITTER_CONSUMER_KEY"),
		ConsumerSecret:    os.Getenv("TWITTER_CONSUMER_SECRET"),
		AccessToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessTokenSecret: os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"),
		BearerToken:       os.Getenv("TWITTER_BEARER_TOKEN"),

		BaseURL:      getEnvOrDefault("TWITTER_API_BASE_URL", "https://api.twitter.com/2"),
		UserEndpoint: "/users",

		SourceUsername: os.Getenv("TWITTER_SOURCE_USERNAME"),

		RateLimit:  rateLimit,
		RateWindow: rateWindow,
		MaxResults: maxResults,

		Logger: func() *logrus.Logger {
			log := logrus.New()
			if level := os.Getenv("LOG_LEVEL"); level != "" {
				if parsedLevel, err := logrus.ParseLevel(level); err == nil {
					log.SetLevel(parsedLevel)
				}
			}
			return log
		}(),
	}

	config.Logger.WithFields(logrus.Fields{
		"bearer_token_exists": config.BearerToken != "",
		"source_username":     config.SourceUsername,
		"base_url":            config.BaseURL,
		"rate_limit":          config.RateLimit,
	}).Debug("Twitter config initialized")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *TwitterConfig) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	// Timeline reads work with either OAuth 1.0a credentials or a bearer token
	hasOAuth := c.ConsumerKey != "" && c.ConsumerSecret != "" &&
		c.AccessToken != "" && c.AccessTokenSecret != ""
	if !hasOAuth && c.BearerToken == "" {
		return fmt.Errorf("either OAuth 1.0a credentials or Bearer token must be provided")
	}

	if c.SourceUsername == "" {
		return fmt.Errorf("TWITTER_SOURCE_USERNAME is required")
	}
	if c.RateLimit < 1 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.RateWindow < 1 {
		return fmt.Errorf("rate window must be positive")
	}
	if c.MaxResults < 1 || c.MaxResults > 100 {
		return fmt.Errorf("max results must be between 1 and 100")
	}

	if c.BaseURL == "" {
		c.BaseURL = "https://api.twitter.com/2"
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
