package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/kritlunkad/krishi-drishti-backend/config"
)

type geminiAdvisor struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	name    string
	timeout time.Duration
}

func NewGemini(ctx context.Context, cfg config.AdvisorConfig, logger *zap.Logger) (Advisor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ADVISOR_API_KEY is required for gemini")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}
	logger.Named("advisor.gemini").Debug("gemini advisor ready", zap.String("model", cfg.Model))
	return &geminiAdvisor{client: client, model: model, name: "gemini:" + cfg.Model, timeout: cfg.Timeout}, nil
}

func (g *geminiAdvisor) Name() string { return g.name }

func (g *geminiAdvisor) Advise(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("gemini returned empty text")
	}
	return out, nil
}

func (g *geminiAdvisor) Close() error { return g.client.Close() }
