package sessionmw

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bookcart/internal/session"
)

const (
	SourceNone   = "none"
	SourceCookie = "cookie"
	SourceBearer = "bearer"
)

// Token returns the caller's access token and where it came from. The
// accessToken cookie wins over an Authorization bearer header.
func Token(r *http.Request) (tok, source string) {
	if ck, err := r.Cookie("accessToken"); err == nil && ck.Value != "" {
		return ck.Value, SourceCookie
	}
	h := r.Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		if tok = strings.TrimSpace(after); tok != "" {
			return tok, SourceBearer
		}
	}
	return "", SourceNone
}

// CarryToken copies the caller's access token into the request context.
// Validation is left to whoever needs the user.
func CarryToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if tok, _ := Token(c.Request()); tok != "" {
			req := c.Request()
			c.SetRequest(req.WithContext(session.WithToken(req.Context(), tok)))
		}
		return next(c)
	}
}
