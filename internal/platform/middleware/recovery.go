package middleware

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dentalchart/dentalchart/internal/platform/fhir"
)

// Recovery turns a handler panic into a 500. The log line carries the tenant,
// route and patient so a crash can be tied to one clinic's chart. FHIR routes
// answer with an OperationOutcome like their other errors.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				// net/http uses this sentinel to abort a response; let it through.
				if r == http.ErrAbortHandler {
					panic(r)
				}

				var stack [4096]byte
				n := runtime.Stack(stack[:], false)

				rid, _ := c.Get(RequestIDContextKey).(string)
				tenant, _ := c.Get("tenant_id").(string)
				logger.Error().
					Str("request_id", rid).
					Str("tenant_id", tenant).
					Str("method", c.Request().Method).
					Str("route", c.Path()).
					Str("patient_id", c.Param("patient_id")).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")

				if strings.HasPrefix(c.Request().URL.Path, "/fhir/") {
					err = c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome("internal server error"))
					return
				}
				err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}()
			return next(c)
		}
	}
}
