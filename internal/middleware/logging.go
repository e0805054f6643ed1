package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/labstack/echo/v4"

	"quantumvision/internal/logger"
)

// hashIPForLog produces a short, irreversible hash prefix of the IP address.
func hashIPForLog(ip string) string {
	h := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(h[:])[:12]
}

// RequestLogger logs each request as structured JSON through the global zerolog logger.
// Server errors are logged at error level, client errors at warn.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := responseStatus(c, err)
			evt := logger.Log.Info()
			if status >= 500 {
				evt = logger.Log.Error().Err(err)
			} else if status >= 400 {
				evt = logger.Log.Warn()
			}

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}

			evt.
				Str("method", c.Request().Method).
				Str("route", route).
				Int("status", status).
				Dur("duration_ms", time.Since(start)).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("ip_hash", hashIPForLog(c.RealIP())).
				Msg("request")

			return err
		}
	}
}
