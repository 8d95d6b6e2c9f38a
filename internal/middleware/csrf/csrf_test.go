package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{SkipPaths: []string{"/health/live"}}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/cart", ok)
	e.POST("/checkout", ok)
	e.POST("/health/live", ok)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func issuedToken(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	tok := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, tok)
	return tok
}

func TestSafeRequestsGetToken(t *testing.T) {
	t.Parallel()
	e := newServer()

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, cookie.Value, rec.Header().Get("X-CSRF-Token"))
	assert.False(t, cookie.HttpOnly)
}

func TestUnsafeRequests(t *testing.T) {
	t.Parallel()
	e := newServer()
	tok := issuedToken(t, e)

	tests := []struct {
		name   string
		path   string
		mod    func(r *http.Request)
		status int
	}{
		{
			name:   "no credential cookie",
			path:   "/checkout",
			mod:    func(r *http.Request) {},
			status: http.StatusOK,
		},
		{
			name: "cookie auth with matching token",
			path: "/checkout",
			mod: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: tok})
				r.Header.Set("X-CSRF-Token", tok)
				r.Header.Set("Origin", "http://example.com")
			},
			status: http.StatusOK,
		},
		{
			name: "cookie auth without header",
			path: "/checkout",
			mod: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: tok})
				r.Header.Set("Origin", "http://example.com")
			},
			status: http.StatusForbidden,
		},
		{
			name: "cookie auth with wrong token",
			path: "/checkout",
			mod: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: tok})
				r.Header.Set("X-CSRF-Token", tok+"x")
				r.Header.Set("Origin", "http://example.com")
			},
			status: http.StatusForbidden,
		},
		{
			name: "foreign origin",
			path: "/checkout",
			mod: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: tok})
				r.Header.Set("X-CSRF-Token", tok)
				r.Header.Set("Origin", "http://evil.test")
			},
			status: http.StatusForbidden,
		},
		{
			name: "skipped path",
			path: "/health/live",
			mod: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})
			},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			tt.mod(req)
			assert.Equal(t, tt.status, serve(e, req).Code)
		})
	}
}
