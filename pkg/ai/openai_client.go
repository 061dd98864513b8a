// pkg/ai/openai_client.go

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/config"
)

// openAI talks to any OpenAI-compatible chat endpoint. The default endpoint is
// a local Ollama serving the fine-tuned agriculture model.
type openAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

func NewOpenAI(cfg config.AdvisorConfig, logger *zap.Logger) (Advisor, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	// Ollama ignores the key but go-openai always sends one
	cc := openai.DefaultConfig(firstNonEmpty(cfg.APIKey, "ollama"))
	cc.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &openAI{
		client:      openai.NewClientWithConfig(cc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      logger.Named("advisor.openai"),
	}, nil
}

func (c *openAI) Name() string { return "openai:" + c.model }

func (c *openAI) Advise(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("chat completion: status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty completion")
	}

	c.logger.Debug("advisor completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))
	return content, nil
}

func (c *openAI) Close() error { return nil }
