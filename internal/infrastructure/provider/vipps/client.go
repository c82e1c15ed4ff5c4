package vipps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/provider"
)

// Config holds the merchant credentials and endpoints.
type Config struct {
	ClientID             string
	ClientSecret         string
	SubscriptionKey      string
	MerchantSerialNumber string
	TokenURL             string
	PaymentsURL          string
	DeeplinkURL          string
	Currency             string
	SystemName           string
	SystemVersion        string
	PluginName           string
	PluginVersion        string
}

// Client talks to the Vipps OAuth and ePayment APIs. Every operation fetches a
// fresh access token; there is no token cache.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger

	now    func() time.Time
	newKey func() string
}

var _ provider.PaymentGateway = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock replaces the clock used for create-payment idempotency keys.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithKeyGenerator replaces the idempotency key source for capture and refund.
func WithKeyGenerator(newKey func() string) Option {
	return func(c *Client) { c.newKey = newKey }
}

func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg.Currency == "" {
		cfg.Currency = "NOK"
	}
	cfg.PaymentsURL = strings.TrimRight(cfg.PaymentsURL, "/")

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger.Named("vipps"),
		now:    time.Now,
		newKey: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   string `json:"expires_in"`
}

// GetAccessToken fetches a client-credentials token.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	body := map[string]string{
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
		"grant_type":    "client_credentials",
	}

	headers := http.Header{}
	headers.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)
	headers.Set("Merchant-Serial-Number", c.cfg.MerchantSerialNumber)

	respBody, err := c.do(ctx, http.MethodPost, c.cfg.TokenURL, headers, body)
	if err != nil {
		return "", err
	}

	var token tokenResponse
	if err := json.Unmarshal(respBody, &token); err != nil {
		return "", &provider.ProviderError{
			Code:    provider.ErrCodeParse,
			Message: "Failed to parse access token response",
			Details: err.Error(),
		}
	}
	if token.AccessToken == "" {
		return "", &provider.ProviderError{
			Code:    provider.ErrCodeResponse,
			Message: "Access token missing from response",
			Details: string(respBody),
		}
	}
	return token.AccessToken, nil
}

// authHeaders fetches a token and builds the headers every ePayment call carries.
func (c *Client) authHeaders(ctx context.Context) (http.Header, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)
	headers.Set("Merchant-Serial-Number", c.cfg.MerchantSerialNumber)
	headers.Set("Vipps-System-Name", c.cfg.SystemName)
	headers.Set("Vipps-System-Version", c.cfg.SystemVersion)
	headers.Set("Vipps-System-Plugin-Name", c.cfg.PluginName)
	headers.Set("Vipps-System-Plugin-Version", c.cfg.PluginVersion)
	return headers, nil
}

// do sends a JSON request and returns the body of a 2xx response. Anything
// else becomes a *provider.ProviderError carrying the provider body.
func (c *Client) do(ctx context.Context, method, url string, headers http.Header, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, &provider.ProviderError{
				Code:    provider.ErrCodeMarshal,
				Message: "Failed to prepare request",
				Details: err.Error(),
			}
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeRequest,
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}
	for k, v := range headers {
		httpReq.Header[k] = v
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("Vipps request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err))
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeRequest,
			Message: "Vipps API request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:       provider.ErrCodeResponse,
			Message:    "Failed to read response",
			Details:    err.Error(),
			StatusCode: resp.StatusCode,
		}
	}

	c.logger.Debug("Vipps response received",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Vipps API returned an error",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return nil, &provider.ProviderError{
			Code:       provider.ErrCodeAPI,
			Message:    fmt.Sprintf("Vipps API returned %d", resp.StatusCode),
			Details:    string(respBody),
			StatusCode: resp.StatusCode,
		}
	}

	return respBody, nil
}
