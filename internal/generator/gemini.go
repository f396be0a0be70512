package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const providerGemini = "gemini"

// GeminiConfig configures a Gemini client.
type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// GeminiClient generates text with the Gemini API. The prompt is sent as the
// system instruction and the note content as the user turn.
type GeminiClient struct {
	client *genai.Client
	cfg    GeminiConfig
	logger *zap.Logger
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key not configured")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini: model is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiClient{client: client, cfg: cfg, logger: logger}, nil
}

// Generate sends one GenerateContent request.
func (g *GeminiClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.Prompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.cfg.Temperature)),
	}
	if g.cfg.MaxTokens > 0 {
		config.MaxOutputTokens = int32(g.cfg.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(req.Content), config)
	if err != nil {
		return nil, &GenerationError{Provider: providerGemini, Err: err}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, &GenerationError{Provider: providerGemini, Err: errors.New("no content returned")}
	}
	g.logger.Debug("gemini completion", zap.String("model", g.cfg.Model), zap.Int("response_len", len(text)))
	return finish(text, req), nil
}
