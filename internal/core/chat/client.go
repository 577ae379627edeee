package chat

import (
	"ai-concierge/config"
	"ai-concierge/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client sends one system+user exchange and returns the assistant text.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// ConfigFromSettings maps config.Cfg.OpenAI onto Config.
func ConfigFromSettings() Config {
	c := config.Cfg.OpenAI
	return Config{
		APIKey:      c.Key,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Timeout:     time.Duration(c.TimeoutSeconds) * time.Second,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}
type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type OpenAIClient struct {
	client openai.Client
	cfg    Config
}

func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing openai key")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &OpenAIClient{client: openai.NewClient(opts...), cfg: cfg}, nil
}

// Complete calls chat/completions once. An empty system prompt is omitted.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: user})

	req := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages:    msgs,
	}
	start := time.Now()
	var out chatResponse
	if err := c.client.Post(ctx, "chat/completions", req, &out); err != nil {
		logger.Error(err, "%v: chat completion failed", config.ModuleChat)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}
	logger.WithFields(map[string]interface{}{
		"module":  config.ModuleChat,
		"model":   c.cfg.Model,
		"finish":  out.Choices[0].FinishReason,
		"elapsed": time.Since(start).Milliseconds(),
	}).Debug("chat: completion done")
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
