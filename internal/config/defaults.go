package config

import "time"

// Generation providers understood by the generator package.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderEcho   = "echo"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Generator.Provider == "" {
		cfg.Generator.Provider = ProviderOpenAI
	}
	switch cfg.Generator.Provider {
	case ProviderOpenAI:
		if cfg.Generator.Model == "" {
			cfg.Generator.Model = "gpt-4o-mini"
		}
		if cfg.Generator.BaseURL == "" {
			cfg.Generator.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Generator.APIKeyEnv == "" {
			cfg.Generator.APIKeyEnv = "OPENAI_API_KEY"
		}
	case ProviderGemini:
		if cfg.Generator.Model == "" {
			cfg.Generator.Model = "gemini-2.0-flash"
		}
		if cfg.Generator.APIKeyEnv == "" {
			cfg.Generator.APIKeyEnv = "GEMINI_API_KEY"
		}
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = 60 * time.Second
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 2048
	}
	if cfg.Notes.DefaultFormat == "" {
		cfg.Notes.DefaultFormat = "girp"
	}
	if cfg.Notes.GenerationTimeout == 0 {
		cfg.Notes.GenerationTimeout = 90 * time.Second
	}
}
