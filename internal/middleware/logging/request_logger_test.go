package loggingmw

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bookcart/internal/logging"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func newServer(buf *bytes.Buffer) *echo.Echo {
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(buf, "debug"), "cart"))
	e.GET("/cart", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("handler ran")
		return c.JSON(http.StatusOK, map[string]int{"total_items": 0})
	})
	e.PATCH("/cart/items/:id", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, "quantity is required")
	})
	e.DELETE("/cart", func(c echo.Context) error {
		return errors.New("disk full")
	})
	return e
}

func TestRequestLogger_Completed(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	e := newServer(&buf)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "secret-jwt"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))
	assert.NotContains(t, buf.String(), "secret-jwt")

	got := lines(t, &buf)
	require.Len(t, got, 2)

	// the handler logs through the request logger
	assert.Equal(t, "handler ran", got[0]["msg"])
	assert.Equal(t, "rid-1", got[0]["request_id"])
	assert.Equal(t, "cart", got[0]["cart_key"])

	done := got[1]
	assert.Equal(t, "INFO", done["level"])
	assert.Equal(t, "request completed", done["msg"])
	assert.Equal(t, float64(http.StatusOK), done["status"])
	assert.Equal(t, "/cart", done["path"])
	assert.Equal(t, "cookie", done["auth"])
	assert.Contains(t, done, "bytes")
}

func TestRequestLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		bearer     bool
		wantStatus int
		wantLevel  string
		wantAuth   string
	}{
		{"client error", http.MethodPatch, "/cart/items/b1", false, http.StatusBadRequest, "WARN", "none"},
		{"handler error", http.MethodDelete, "/cart", true, http.StatusInternalServerError, "ERROR", "bearer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			e := newServer(&buf)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.bearer {
				req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)

			got := lines(t, &buf)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantLevel, got[0]["level"])
			assert.Equal(t, float64(tt.wantStatus), got[0]["status"])
			assert.Equal(t, tt.wantAuth, got[0]["auth"])
			assert.NotContains(t, got[0], "request_id")
		})
	}
}
