// Package checkout resolves which checkout session a storefront request
// belongs to. The X-Session-Id header wins; browsers that do not send it fall
// back to a signed cookie.
package checkout

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	HeaderSessionID = "X-Session-Id"
	CookieName      = "storefront_checkout"

	sessionIDValue = "session_id"
	contextKey     = "checkout_session_id"
)

// CookieOptions configures the fallback cookie.
type CookieOptions struct {
	Secret string
	MaxAge time.Duration
	Secure bool
}

// NewCookieStore returns the store used by session.Middleware.
func NewCookieStore(opts CookieOptions) sessions.Store {
	store := sessions.NewCookieStore([]byte(opts.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Middleware puts the resolved checkout session id on the context. It never
// rejects a request; an unreadable cookie is treated as absent.
func Middleware(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := c.Request().Header.Get(HeaderSessionID); id != "" {
				c.Set(contextKey, id)
				return next(c)
			}

			sess, err := session.Get(CookieName, c)
			if err != nil {
				logger.Debug("Ignoring unreadable checkout cookie", zap.Error(err), zap.String("ip", c.RealIP()))
				return next(c)
			}
			if id, ok := sess.Values[sessionIDValue].(string); ok && id != "" {
				c.Set(contextKey, id)
			}
			return next(c)
		}
	}
}

// SessionID returns the checkout session id of the request, or "".
func SessionID(c echo.Context) string {
	id, _ := c.Get(contextKey).(string)
	return id
}

// Remember stores id on the context, the response header and the fallback
// cookie. The error is non-nil when no cookie store is installed.
func Remember(c echo.Context, id string) error {
	c.Set(contextKey, id)
	c.Response().Header().Set(HeaderSessionID, id)

	sess, err := session.Get(CookieName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionIDValue] = id
	return sess.Save(c.Request(), c.Response())
}
