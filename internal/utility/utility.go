package utility

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// GetRealIP returns the client address, preferring proxy headers over the socket peer.
func GetRealIP(c echo.Context) string {
	// X-Forwarded-For can be a list: "client, proxy1, proxy2"
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xRealIP := c.Request().Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}

	return c.RealIP()
}

// GetLogger returns the request-scoped logger set by the logging middleware,
// or the context default when the middleware did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get("logger").(*zerolog.Logger); ok && l != nil {
		return l
	}
	return zerolog.Ctx(c.Request().Context())
}

// GetRequestID safely retrieves the request ID from the Echo context.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get("request_id").(string)
	return id
}
