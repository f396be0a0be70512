package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const providerOpenAI = "openai"

// OpenAIConfig configures an OpenAI-compatible chat completions client.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// OpenAIClient calls an OpenAI-compatible /chat/completions endpoint. The
// prompt is sent as the system message and the note content as the user message.
type OpenAIClient struct {
	cfg        OpenAIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAIClient) { o.httpClient = c }
}

// WithOpenAILogger sets the logger.
func WithOpenAILogger(l *zap.Logger) OpenAIOption {
	return func(o *OpenAIClient) { o.logger = l }
}

// NewOpenAIClient creates a client. BaseURL must include the API version
// path, e.g. "https://api.openai.com/v1".
func NewOpenAIClient(cfg OpenAIConfig, opts ...OpenAIOption) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key not configured")
	}
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, errors.New("openai: base url and model are required")
	}
	c := &OpenAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends one chat completion request. Transport failures, non-2xx
// responses and empty replies are returned as *GenerationError.
func (c *OpenAIClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Prompt},
			{Role: "user", Content: req.Content},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &GenerationError{Provider: providerOpenAI, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GenerationError{Provider: providerOpenAI, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GenerationError{Provider: providerOpenAI, StatusCode: resp.StatusCode, Err: errors.New(apiMessage(data))}
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &GenerationError{Provider: providerOpenAI, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if out.Error != nil {
		return nil, &GenerationError{Provider: providerOpenAI, StatusCode: resp.StatusCode, Err: errors.New(out.Error.Message)}
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return nil, &GenerationError{Provider: providerOpenAI, StatusCode: resp.StatusCode, Err: errors.New("no completion returned")}
	}

	text := strings.TrimSpace(out.Choices[0].Message.Content)
	c.logger.Debug("openai completion",
		zap.String("model", c.cfg.Model),
		zap.Int("response_len", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return finish(text, req), nil
}

// apiMessage extracts error.message from an error body, falling back to the raw body.
func apiMessage(data []byte) string {
	var out chatResponse
	if err := json.Unmarshal(data, &out); err == nil && out.Error != nil && out.Error.Message != "" {
		return out.Error.Message
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return msg
	}
	return "empty response body"
}
