// pkg/ai/client.go

package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/config"
)

// Advisor is the conversational plant-disease model.
type Advisor interface {
	Advise(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider and model in logs and metrics.
	Name() string
	Close() error
}

// New picks the advisor for cfg.Provider. The openai provider falls back to
// the mock when no endpoint is configured.
func New(ctx context.Context, cfg config.AdvisorConfig, logger *zap.Logger) (Advisor, error) {
	switch cfg.Provider {
	case "openai", "":
		if strings.TrimSpace(cfg.Endpoint) == "" {
			logger.Warn("ADVISOR_ENDPOINT empty, using mock advisor")
			return NewMock(), nil
		}
		return NewOpenAI(cfg, logger)
	case "anthropic":
		return NewAnthropic(cfg, logger)
	case "gemini":
		return NewGemini(ctx, cfg, logger)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unsupported advisor provider %q", cfg.Provider)
	}
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
