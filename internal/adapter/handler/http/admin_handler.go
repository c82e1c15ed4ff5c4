package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/usecase"
	"github.com/wekeepgrowing/storefront/pkg/messaging"
)

// StatusSubscriber streams published payment status changes.
type StatusSubscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan messaging.Message, error)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminHandler serves the order/refund admin view. Every route except Login
// sits behind the admin JWT middleware.
type AdminHandler struct {
	admin      *usecase.AdminService
	refunds    *usecase.RefundService
	subscriber StatusSubscriber
	logger     *zap.Logger
}

// NewAdminHandler creates the handler. subscriber may be nil when messaging
// is not configured; the status stream then answers 501.
func NewAdminHandler(admin *usecase.AdminService, refunds *usecase.RefundService, subscriber StatusSubscriber, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin:      admin,
		refunds:    refunds,
		subscriber: subscriber,
		logger:     logger,
	}
}

func (h *AdminHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.admin.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.admin.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.admin.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListUserOrders(c echo.Context) error {
	views, err := h.admin.ListUserOrders(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) Refund(c echo.Context) error {
	var req usecase.RefundRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.refunds.Refund(c.Request().Context(), c.Param("id"), c.Param("reference"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// StreamStatuses relays payment status changes as server-sent events until
// the client disconnects.
func (h *AdminHandler) StreamStatuses(c echo.Context) error {
	if h.subscriber == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": "Status stream is not configured"})
	}

	ctx := c.Request().Context()
	messages, err := h.subscriber.Subscribe(ctx, usecase.StatusChannel)
	if err != nil {
		h.logger.Error("Failed to subscribe to payment statuses", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Status stream unavailable"})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(res, "event: status\ndata: %s\n\n", msg.Payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
