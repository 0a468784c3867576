package translate

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	APIKey         string
	Model          string
	TargetLanguage string
	Temperature    float64
	MaxTokens      int
	Logger         *logrus.Logger
}

// NewConfig reads translation settings from the environment.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		APIKey:         os.Getenv("OPENAI_API_KEY"),
		Model:          os.Getenv("OPENAI_MODEL"),
		TargetLanguage: os.Getenv("TRANSLATE_TARGET_LANGUAGE"),
		Temperature:    0.3,
		MaxTokens:      1000,
		Logger:         logrus.New(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.TargetLanguage == "" {
		c.TargetLanguage = "Japanese"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1000
	}
	if c.Model == "" {
		c.Model = "gpt-4"
	}
	return nil
}
