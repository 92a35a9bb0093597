package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets the response headers for a JSON API that returns
// patient charts. Responses depend on the bearer identity and the clinic, so
// Vary names both; HSTS is only sent once the request arrived over HTTPS.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			h.Add(echo.HeaderVary, echo.HeaderAuthorization)
			h.Add(echo.HeaderVary, "X-Tenant-ID")
			if c.Scheme() == "https" {
				h.Set(echo.HeaderStrictTransportSecurity, "max-age=31536000")
			}
			return next(c)
		}
	}
}
