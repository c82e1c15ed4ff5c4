package checkout

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Use(session.Middleware(NewCookieStore(CookieOptions{Secret: "0123456789abcdef0123456789abcdef", MaxAge: time.Hour})))
	e.Use(Middleware(zap.NewNop()))
	e.PUT("/remember/:id", func(c echo.Context) error {
		return Remember(c, c.Param("id"))
	})
	e.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, SessionID(c))
	})
	return e
}

func TestMiddleware_HeaderWins(t *testing.T) {
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderSessionID, "from-header")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "from-header", rec.Body.String())
}

func TestMiddleware_CookieFallback(t *testing.T) {
	e := newEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/remember/sess-42", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-42", rec.Header().Get(HeaderSessionID))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "sess-42", rec.Body.String())
}

func TestMiddleware_Anonymous(t *testing.T) {
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRemember_WithoutStore(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPut, "/", nil), httptest.NewRecorder())

	assert.Error(t, Remember(c, "sess-1"))
	assert.Equal(t, "sess-1", SessionID(c))
}
