package translate

import (
	"context"
	"fmt"
	"strings"

	gtranslate "cloud.google.com/go/translate"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/metrics"
)

// Google uses Cloud Translation instead of the self-hosted gateway. Failures
// degrade exactly like the gateway.
type Google struct {
	client  *gtranslate.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewGoogle(ctx context.Context, credentialsFile string, logger *zap.Logger, m *metrics.Metrics) (*Google, error) {
	c, err := gtranslate.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("google translate client: %w", err)
	}
	return &Google{client: c, logger: logger, metrics: m}, nil
}

func (g *Google) Translate(ctx context.Context, text, from, to string) Result {
	from, to = Normalize(from), Normalize(to)
	if strings.TrimSpace(text) == "" || from == to {
		return Result{Text: text}
	}
	if !IsSupported(to) {
		return g.fail(text, from, to, fmt.Errorf("unsupported target language %q", to))
	}

	resp, err := g.client.Translate(ctx, []string{text}, language.Make(to), &gtranslate.Options{
		Source: language.Make(from),
		Format: gtranslate.Text,
	})
	if err != nil {
		return g.fail(text, from, to, err)
	}
	if len(resp) == 0 || strings.TrimSpace(resp[0].Text) == "" {
		return g.fail(text, from, to, fmt.Errorf("empty translation"))
	}
	g.metrics.ObserveTranslate("google", "ok")
	return Result{Text: resp[0].Text}
}

func (g *Google) fail(text, from, to string, err error) Result {
	g.metrics.ObserveTranslate("google", "degraded")
	g.logger.Warn("translation degraded, keeping original text",
		zap.String("from", from), zap.String("to", to), zap.Error(err))
	return degraded(text, err)
}

func (g *Google) Close() error {
	return g.client.Close()
}
