package vipps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/provider"
)

type amountBody struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}

type createPaymentBody struct {
	Amount             amountBody        `json:"amount"`
	PaymentMethod      map[string]string `json:"paymentMethod"`
	Customer           map[string]string `json:"customer"`
	Reference          string            `json:"reference"`
	ReturnURL          string            `json:"returnUrl"`
	UserFlow           string            `json:"userFlow"`
	PaymentDescription string            `json:"paymentDescription"`
	Autocapture        bool              `json:"autocapture"`
}

type modificationBody struct {
	ModificationAmount amountBody `json:"modificationAmount"`
}

// CreatePayment creates a WEB_REDIRECT wallet payment.
// POST {payments_url}
func (c *Client) CreatePayment(ctx context.Context, req *provider.CreatePaymentRequest) (*provider.CreatePaymentResponse, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}
	headers.Set("Idempotency-Key", "order-"+strconv.FormatInt(c.now().UnixMilli(), 10))

	body := createPaymentBody{
		Amount:             amountBody{Currency: c.cfg.Currency, Value: req.AmountValue},
		PaymentMethod:      map[string]string{"type": "WALLET"},
		Customer:           map[string]string{"phoneNumber": req.PhoneNumber},
		Reference:          req.Reference,
		ReturnURL:          req.ReturnURL,
		UserFlow:           "WEB_REDIRECT",
		PaymentDescription: req.PaymentDescription,
		Autocapture:        true,
	}

	c.logger.Info("Creating payment",
		zap.String("reference", req.Reference),
		zap.Int64("amount_value", req.AmountValue))

	respBody, err := c.do(ctx, http.MethodPost, c.cfg.PaymentsURL, headers, body)
	if err != nil {
		return nil, err
	}

	redirect, err := parseRedirect(respBody, c.cfg.DeeplinkURL)
	if err != nil {
		return nil, err
	}
	if redirect.Source == redirectNotFound {
		c.logger.Warn("Create payment response had no redirect",
			zap.String("reference", req.Reference),
			zap.String("response", string(respBody)))
		return nil, provider.ErrPaymentTokenNotFound
	}

	return &provider.CreatePaymentResponse{
		URL:          redirect.URL,
		Reference:    req.Reference,
		PSPReference: redirect.PSPReference,
		Aggregate:    redirect.Aggregate,
	}, nil
}

// CapturePayment captures part or all of a reserved amount.
// POST {payments_url}/{reference}/capture
func (c *Client) CapturePayment(ctx context.Context, reference string, amountValue int64) (*provider.ModificationResponse, error) {
	return c.modify(ctx, reference, "capture", amountValue)
}

// RefundPayment refunds part or all of a captured amount.
// POST {payments_url}/{reference}/refund
func (c *Client) RefundPayment(ctx context.Context, reference string, amountValue int64) (*provider.ModificationResponse, error) {
	return c.modify(ctx, reference, "refund", amountValue)
}

// modify issues a capture or refund. Each call gets a new idempotency key, so
// retrying the same logical operation is not deduplicated by the provider.
func (c *Client) modify(ctx context.Context, reference, action string, amountValue int64) (*provider.ModificationResponse, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}
	headers.Set("Idempotency-Key", c.newKey())

	body := modificationBody{
		ModificationAmount: amountBody{Currency: c.cfg.Currency, Value: amountValue},
	}

	c.logger.Info("Modifying payment",
		zap.String("reference", reference),
		zap.String("action", action),
		zap.Int64("amount_value", amountValue))

	respBody, err := c.do(ctx, http.MethodPost, c.paymentURL(reference)+"/"+action, headers, body)
	if err != nil {
		return nil, err
	}

	result := provider.ModificationResponse{Raw: json.RawMessage(respBody)}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeParse,
			Message: "Failed to parse " + action + " response",
			Details: string(respBody),
		}
	}
	return &result, nil
}

// GetPayment reads the current state and aggregate of a payment.
// GET {payments_url}/{reference}
func (c *Client) GetPayment(ctx context.Context, reference string) (*provider.PaymentDetails, error) {
	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, http.MethodGet, c.paymentURL(reference), headers, nil)
	if err != nil {
		return nil, err
	}

	var details provider.PaymentDetails
	if err := json.Unmarshal(respBody, &details); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeParse,
			Message: "Failed to parse payment response",
			Details: string(respBody),
		}
	}
	return &details, nil
}

func (c *Client) paymentURL(reference string) string {
	return c.cfg.PaymentsURL + "/" + url.PathEscape(reference)
}
