package loggingmw

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bookcart/internal/logging"
	sessionmw "github.com/Skotchmaster/bookcart/internal/middleware/session"
)

// RequestLogger puts a per-request logger into the request context and logs
// one line when the request completes. Every line names the cart the server
// works on and how the caller authenticated, never the token itself.
func RequestLogger(base *slog.Logger, cartKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}
			_, auth := sessionmw.Token(c.Request())

			l := base.With(
				"method", c.Request().Method,
				"path", c.Path(),
				"remote_ip", c.RealIP(),
				"cart_key", cartKey,
				"auth", auth,
			)
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}

			c.SetRequest(c.Request().WithContext(logging.IntoContext(c.Request().Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}
			status := c.Response().Status
			ms := time.Since(start).Milliseconds()

			switch {
			case err != nil || status >= 500:
				l.Error("request_error", "status", status, "duration_ms", ms, "error", errStr(err))
			case status >= 400:
				l.Warn("request rejected", "status", status, "duration_ms", ms)
			default:
				l.Info("request completed", "status", status, "duration_ms", ms, "bytes", c.Response().Size)
			}
			return nil
		}
	}
}

func errStr(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}
