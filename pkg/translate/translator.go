// Package translate renders post text into the configured target language.
// The LLM-backed translator is the normal path; Passthrough implements the
// fallback_to_original recovery strategy.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Translator converts post text to the target language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// LLMTranslator translates through a langchaingo LLM.
type LLMTranslator struct {
	llm    llms.Model
	config *Config
	logger *logrus.Logger
}

// NewLLMTranslator creates the OpenAI-backed translator.
func NewLLMTranslator(config *Config) (*LLMTranslator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	llm, err := openai.New(
		openai.WithModel(config.Model),
		openai.WithToken(config.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI: %w", err)
	}

	return &LLMTranslator{
		llm:    llm,
		config: config,
		logger: config.Logger,
	}, nil
}

// Translate returns the text in the target language, preserving tone and any
// hashtags or mentions verbatim.
func (t *LLMTranslator) Translate(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following social media post into %s. "+
			"Keep hashtags, mentions and URLs unchanged. "+
			"Reply with the translation only.\n\n%s",
		t.config.TargetLanguage, text,
	)

	t.logger.WithFields(logrus.Fields{
		"target_language": t.config.TargetLanguage,
		"model":           t.config.Model,
		"input_length":    len(text),
	}).Debug("Translating post")

	completion, err := llms.GenerateFromSinglePrompt(ctx, t.llm, prompt,
		llms.WithTemperature(t.config.Temperature),
		llms.WithMaxTokens(t.config.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	translated := strings.TrimSpace(completion)
	if translated == "" {
		return "", fmt.Errorf("translation returned empty output")
	}

	return translated, nil
}

// Passthrough returns the input unchanged. Used when the orchestrator falls
// back to publishing the original text.
type Passthrough struct{}

func (Passthrough) Translate(_ context.Context, text string) (string, error) {
	return text, nil
}
