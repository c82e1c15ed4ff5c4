package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/middleware/auth"
	"github.com/wekeepgrowing/storefront/internal/middleware/checkout"
	"github.com/wekeepgrowing/storefront/internal/usecase"
	"github.com/wekeepgrowing/storefront/internal/usecase/reconcile"
)

type CheckoutHandler struct {
	sessions   *usecase.SessionService
	reconciler *reconcile.Service
	logger     *zap.Logger
}

func NewCheckoutHandler(sessions *usecase.SessionService, reconciler *reconcile.Service, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		sessions:   sessions,
		reconciler: reconciler,
		logger:     logger,
	}
}

// PaymentReturnResponse is what the confirmation page renders.
type PaymentReturnResponse struct {
	OrderReference string                  `json:"orderReference"`
	BuyerName      string                  `json:"buyerName"`
	Email          string                  `json:"email"`
	PhoneNumber    string                  `json:"phoneNumber"`
	Items          []entity.CartItem       `json:"items"`
	TotalPrice     decimal.Decimal         `json:"totalPrice"`
	Status         entity.OrderStatus      `json:"status"`
	Aggregate      *entity.Aggregate       `json:"aggregate,omitempty"`
	Tickets        []entity.CartItem       `json:"tickets"`
	OrderSaved     reconcile.PersistResult `json:"orderSaved,omitempty"`
}

func (h *CheckoutHandler) PutSession(c echo.Context) error {
	var in usecase.CheckoutInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}

	session, err := h.sessions.Put(c.Request().Context(), checkout.SessionID(c), in)
	if err != nil {
		return err
	}

	if err := checkout.Remember(c, session.ID); err != nil {
		h.logger.Debug("Checkout cookie not written", zap.Error(err))
	}
	return c.JSON(http.StatusOK, session)
}

func (h *CheckoutHandler) GetSession(c echo.Context) error {
	session, err := h.sessions.Get(c.Request().Context(), checkout.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

// PaymentReturn runs the reconciliation flow for the buyer returning from
// Vipps. The flow is bound to the request, so a client that disconnects
// before the settle delay cancels the pending capture.
func (h *CheckoutHandler) PaymentReturn(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := checkout.SessionID(c)
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Checkout session is required"})
	}

	mount, err := h.reconciler.Mount(ctx, sessionID)
	if err != nil {
		return err
	}
	defer mount.Unmount()

	if err := mount.Wait(ctx); err != nil {
		h.logger.Info("Client left before payment settled",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return err
	}

	saved, err := h.reconciler.PersistOrder(ctx, auth.GetIdentity(c), mount)
	if err != nil {
		h.logger.Error("Failed to save order",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	session := mount.Session()
	return c.JSON(http.StatusOK, PaymentReturnResponse{
		OrderReference: session.OrderReference,
		BuyerName:      session.BuyerName,
		Email:          session.Email,
		PhoneNumber:    session.PhoneNumber,
		Items:          session.CartItems,
		TotalPrice:     mount.TotalPrice(),
		Status:         mount.Status(),
		Aggregate:      session.VippsAggregate,
		Tickets:        entity.Tickets(session.CartItems),
		OrderSaved:     saved,
	})
}
