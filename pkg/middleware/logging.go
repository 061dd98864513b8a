package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kritlunkad/krishi-drishti-backend/pkg/metrics"
)

// RequestLogger logs every request and records it in m.
// Pass nil logger to disable logging; nil m disables metrics.
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// let echo write the error response so the status is final
				c.Error(err)
			}

			status := c.Response().Status
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			d := time.Since(start)
			m.ObserveRequest(path, c.Request().Method, strconv.Itoa(status), d)

			if logger != nil {
				fields := []zap.Field{
					zap.String("method", c.Request().Method),
					zap.String("path", c.Request().URL.Path),
					zap.Int("status", status),
					zap.Duration("duration", d),
					zap.String("remote_addr", c.RealIP()),
					zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				}
				if status >= 500 {
					logger.Warn("HTTP request", append(fields, zap.Error(err))...)
				} else {
					logger.Debug("HTTP request", fields...)
				}
			}
			return nil
		}
	}
}
