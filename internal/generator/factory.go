package generator

import (
	"context"
	"fmt"

	"github.com/hyperjump/notedraft/internal/config"
	"go.uber.org/zap"
)

// New builds the generator selected by cfg.Provider.
func New(ctx context.Context, cfg *config.GeneratorConfig, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c, err := NewOpenAIClient(OpenAIConfig{
			APIKey:      cfg.APIKey(),
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.TemperatureOrDefault(),
		}, WithOpenAILogger(logger))
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini:
		g, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:      cfg.APIKey(),
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.TemperatureOrDefault(),
		}, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderEcho:
		return Echo{}, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}
