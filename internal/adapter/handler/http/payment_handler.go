package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/provider"
	"github.com/wekeepgrowing/storefront/internal/middleware/checkout"
	"github.com/wekeepgrowing/storefront/internal/usecase"
)

type CaptureRequest struct {
	Reference   string `json:"reference" validate:"required"`
	AmountValue int64  `json:"amountValue" validate:"required,gt=0"`
}

type RefundPaymentRequest struct {
	Reference    string `json:"reference" validate:"required"`
	AmountValue  int64  `json:"amountValue" validate:"required,gt=0"`
	RefundReason string `json:"refundReason"`
}

// PaymentHandler serves the payment orchestration endpoints. Provider failures
// are answered with 500 and the provider's error body under "details".
type PaymentHandler struct {
	usecase *usecase.PaymentUsecase
	logger  *zap.Logger
}

func NewPaymentHandler(usecase *usecase.PaymentUsecase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req provider.CreatePaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.usecase.CreatePayment(c.Request().Context(), checkout.SessionID(c), &req)
	if err != nil {
		if errors.Is(err, provider.ErrPaymentTokenNotFound) {
			h.logger.Error("Vipps payment token not found", zap.String("reference", req.Reference))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": provider.ErrPaymentTokenNotFound.Error(),
			})
		}
		h.logger.Error("Failed to create Vipps payment",
			zap.String("reference", req.Reference),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Failed to create Vipps payment",
			"details": provider.ErrorDetails(err),
		})
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CapturePayment(c echo.Context) error {
	var req CaptureRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.usecase.CapturePayment(c.Request().Context(), req.Reference, req.AmountValue)
	if err != nil {
		h.logger.Error("Failed to capture Vipps payment",
			zap.String("reference", req.Reference),
			zap.Int64("amount_value", req.AmountValue),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Failed to capture Vipps payment",
			"details": provider.ErrorDetails(err),
		})
	}

	return passthrough(c, resp)
}

func (h *PaymentHandler) RefundPayment(c echo.Context) error {
	var req RefundPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.usecase.RefundPayment(c.Request().Context(), req.Reference, req.AmountValue, req.RefundReason)
	if err != nil {
		h.logger.Error("Failed to refund Vipps payment",
			zap.String("reference", req.Reference),
			zap.Int64("amount_value", req.AmountValue),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Failed to refund Vipps payment",
			"details": provider.ErrorDetails(err),
		})
	}

	return passthrough(c, resp)
}

// GetPayment returns the locally recorded status of a reference.
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	payment, err := h.usecase.GetPayment(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// ListPayments is the admin listing of payment status records.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	var params entity.PaginationParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid pagination parameters"})
	}

	page, err := h.usecase.ListPayments(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// passthrough writes the provider's own response body.
func passthrough(c echo.Context, resp *provider.ModificationResponse) error {
	if len(resp.Raw) == 0 {
		return c.JSON(http.StatusOK, resp)
	}
	return c.JSONBlob(http.StatusOK, resp.Raw)
}
