package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"stock-analysis-agent/internal/logger"
)

// RequestLogging logs one line per request; 5xx responses log at error level.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"route", c.Path(),
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
			}
			if id, ok := c.Get(RequestIDKey).(string); ok {
				fields = append(fields, "request_id", id)
			}

			if status >= 500 {
				logger.Error(req.Context(), "HTTP request failed", fields...)
			} else {
				logger.Info(req.Context(), "HTTP request", fields...)
			}
			return nil
		}
	}
}
