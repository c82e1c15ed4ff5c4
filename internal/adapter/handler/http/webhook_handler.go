package http

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxWebhookBody bounds how much of a notification is read.
const maxWebhookBody = 1 << 20

// WebhookProcessor applies one raw notification body.
type WebhookProcessor interface {
	Handle(ctx context.Context, body []byte) error
}

// WebhookHandler acknowledges every notification with 200. Processing errors
// are logged only, so the provider never retries because of them.
type WebhookHandler struct {
	processor WebhookProcessor
	logger    *zap.Logger
}

func NewWebhookHandler(processor WebhookProcessor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger,
	}
}

func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("Error reading webhook body", zap.Error(err))
		return c.String(http.StatusOK, "Webhook received")
	}

	if err := h.processor.Handle(c.Request().Context(), body); err != nil {
		h.logger.Warn("Webhook not applied",
			zap.Error(err),
			zap.Int("body_size", len(body)),
		)
	}

	return c.String(http.StatusOK, "Webhook received")
}
