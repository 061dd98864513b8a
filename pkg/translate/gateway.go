package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/metrics"
)

type gatewayRequest struct {
	Text     string `json:"text"`
	FromCode string `json:"from_code"`
	ToCode   string `json:"to_code"`
}

type gatewayResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Gateway calls the Translation Gateway microservice over HTTP.
type Gateway struct {
	http    *resty.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewGateway(baseURL string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Gateway {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Gateway{http: c, logger: logger, metrics: m}
}

func (g *Gateway) Translate(ctx context.Context, text, from, to string) Result {
	from, to = Normalize(from), Normalize(to)
	if strings.TrimSpace(text) == "" || from == to {
		return Result{Text: text}
	}
	route, ok := Route(to)
	if !ok {
		return g.fail(text, from, to, "", fmt.Errorf("unsupported target language %q", to))
	}

	var out gatewayResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetBody(gatewayRequest{Text: text, FromCode: from, ToCode: to}).
		SetResult(&out).
		Post(route)
	if err != nil {
		return g.fail(text, from, to, route, err)
	}
	if resp.IsError() {
		return g.fail(text, from, to, route, fmt.Errorf("gateway returned %s", resp.Status()))
	}
	if strings.TrimSpace(out.TranslatedText) == "" {
		return g.fail(text, from, to, route, errors.New("empty translated_text"))
	}

	g.metrics.ObserveTranslate(route, "ok")
	return Result{Text: out.TranslatedText}
}

func (g *Gateway) fail(text, from, to, route string, err error) Result {
	g.metrics.ObserveTranslate(route, "degraded")
	g.logger.Warn("translation degraded, keeping original text",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("route", route),
		zap.Error(err),
	)
	return degraded(text, err)
}
