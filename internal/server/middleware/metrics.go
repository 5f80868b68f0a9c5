package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"stock-analysis-agent/internal/metrics"
)

// Metrics records request count, latency and in-flight requests. Routes are
// labelled by their template to keep cardinality low.
func Metrics(rec *metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rec.InFlight(1)
			defer rec.InFlight(-1)
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			rec.RecordHTTP(route, c.Request().Method, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
