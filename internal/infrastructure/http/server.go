package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/wekeepgrowing/storefront/internal/adapter/handler/http"
	"github.com/wekeepgrowing/storefront/internal/config"
	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/middleware/auth"
	"github.com/wekeepgrowing/storefront/internal/middleware/checkout"
	"github.com/wekeepgrowing/storefront/pkg/logger"
)

// Handlers are the HTTP handlers the server routes to.
type Handlers struct {
	Payment  *handlers.PaymentHandler
	Webhook  *handlers.WebhookHandler
	Checkout *handlers.CheckoutHandler
	Admin    *handlers.AdminHandler
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
}

func NewServer(cfg *config.Config, log *zap.Logger, h Handlers) *Server {
	e := echo.New()
	logger.WithEchoLogger(e, log)
	e.Validator = handlers.NewRequestValidator()

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.Service.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, checkout.HeaderSessionID},
		ExposeHeaders: []string{checkout.HeaderSessionID},
	}))

	s := &Server{
		config: cfg,
		logger: log,
		echo:   e,
	}
	s.setupRoutes(h)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := s.config.Server.HTTP.Address()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes(h Handlers) {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
			"version": s.config.Service.Version,
		})
	})

	sessionMiddleware := []echo.MiddlewareFunc{}
	if s.config.Session.CookieSecret != "" {
		sessionMiddleware = append(sessionMiddleware, session.Middleware(checkout.NewCookieStore(checkout.CookieOptions{
			Secret: s.config.Session.CookieSecret,
			MaxAge: s.config.Session.CookieMaxAge,
			Secure: s.config.Session.CookieSecure,
		})))
	}
	sessionMiddleware = append(sessionMiddleware, checkout.Middleware(s.logger))

	// Customer tokens are optional: anonymous buyers can pay, only signed-in
	// buyers get their order saved.
	optionalAuth := auth.JWTMiddleware(auth.JWTConfig{
		Secret:   s.config.JWT.Secret,
		Logger:   s.logger,
		Optional: true,
	})
	adminAuth := auth.JWTMiddleware(auth.JWTConfig{
		Secret:       s.config.JWT.Secret,
		Logger:       s.logger,
		RequiredRole: entity.RoleAdmin,
	})

	// Payment orchestration (unversioned paths used by the storefront)
	s.echo.POST("/create-payment", h.Payment.CreatePayment, sessionMiddleware...)
	s.echo.POST("/capture-payment", h.Payment.CapturePayment)
	s.echo.POST("/refund-payment", h.Payment.RefundPayment)
	s.echo.POST("/vipps-webhook", h.Webhook.HandleWebhook)

	v1 := s.echo.Group("/api/v1")

	checkoutMiddleware := append([]echo.MiddlewareFunc{optionalAuth}, sessionMiddleware...)
	v1.PUT("/checkout/session", h.Checkout.PutSession, checkoutMiddleware...)
	v1.GET("/checkout/session", h.Checkout.GetSession, checkoutMiddleware...)
	v1.GET("/payment-return", h.Checkout.PaymentReturn, checkoutMiddleware...)
	v1.GET("/payments/:reference", h.Payment.GetPayment)

	v1.POST("/admin/login", h.Admin.Login)
	admin := v1.Group("/admin", adminAuth)
	admin.GET("/users", h.Admin.ListUsers)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
	admin.GET("/users/:id/orders", h.Admin.ListUserOrders)
	admin.POST("/users/:id/orders/:reference/refund", h.Admin.Refund)
	admin.GET("/payments", h.Payment.ListPayments)
	admin.GET("/payments/stream", h.Admin.StreamStatuses)

	if dir := s.config.Service.StaticDir; dir != "" {
		s.echo.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  dir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				return isAPIPath(c.Request().URL.Path)
			},
		}))
		s.logger.Info("Serving storefront build", zap.String("dir", dir))
	}
}

var apiPrefixes = []string{"/api/", "/health", "/create-payment", "/capture-payment", "/refund-payment", "/vipps-webhook"}

func isAPIPath(path string) bool {
	for _, prefix := range apiPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
