package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"quantumvision/internal/metrics"
)

// Metrics records request duration by route template and tracks in-flight requests.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			metrics.RequestsInFlight.Inc()
			defer metrics.RequestsInFlight.Dec()

			start := time.Now()
			err := next(c)

			// Unmatched routes share one label to keep cardinality bounded.
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.RequestDuration.
				WithLabelValues(route, c.Request().Method, strconv.Itoa(responseStatus(c, err))).
				Observe(time.Since(start).Seconds())

			return err
		}
	}
}
