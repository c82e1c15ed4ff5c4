package vipps

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/provider"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]interface{}
}

type fakeVipps struct {
	mu       sync.Mutex
	requests []recordedRequest

	tokenStatus  int
	createStatus int
	createBody   string
	modifyStatus int
	modifyBody   string
}

func (f *fakeVipps) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var body map[string]interface{}
		if len(raw) > 0 {
			assert.NoError(t, json.Unmarshal(raw, &body))
		}

		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/accesstoken/get":
			writeStatus(w, f.tokenStatus)
			_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer","expires_in":"3600"}`))
		case r.URL.Path == "/epayment/v1/payments" && r.Method == http.MethodPost:
			writeStatus(w, f.createStatus)
			_, _ = w.Write([]byte(f.createBody))
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"reference":"order-123456","state":"AUTHORIZED","aggregate":{"authorizedAmount":{"value":30000,"currency":"NOK"}}}`))
		default:
			writeStatus(w, f.modifyStatus)
			_, _ = w.Write([]byte(f.modifyBody))
		}
	})
}

func writeStatus(w http.ResponseWriter, status int) {
	if status != 0 {
		w.WriteHeader(status)
	}
}

func newTestClient(t *testing.T, f *fakeVipps) *Client {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	return NewClient(Config{
		ClientID:             "client",
		ClientSecret:         "secret",
		SubscriptionKey:      "sub-key",
		MerchantSerialNumber: "123456",
		TokenURL:             srv.URL + "/accesstoken/get",
		PaymentsURL:          srv.URL + "/epayment/v1/payments",
		SystemName:           "storefront",
		SystemVersion:        "1.0.0",
		PluginName:           "storefront-backend",
		PluginVersion:        "1.0.0",
	}, zap.NewNop(),
		WithClock(func() time.Time { return time.UnixMilli(1700000000123) }),
		WithKeyGenerator(func() string { return "key-1" }),
	)
}

func TestCreatePayment(t *testing.T) {
	f := &fakeVipps{createBody: `{"redirectUrl":"https://pay.vipps.no/abc","reference":"order-123456","pspReference":"psp-9"}`}
	client := newTestClient(t, f)

	resp, err := client.CreatePayment(context.Background(), &provider.CreatePaymentRequest{
		AmountValue:        30000,
		PhoneNumber:        "4791234567",
		Reference:          "order-123456",
		ReturnURL:          "https://shop.example/payment-return",
		PaymentDescription: "2x Lekeland",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.vipps.no/abc", resp.URL)
	assert.Equal(t, "order-123456", resp.Reference)
	assert.Equal(t, "psp-9", resp.PSPReference)

	require.Len(t, f.requests, 2)

	tokenReq := f.requests[0]
	assert.Equal(t, "client", tokenReq.Body["client_id"])
	assert.Equal(t, "secret", tokenReq.Body["client_secret"])
	assert.Equal(t, "client_credentials", tokenReq.Body["grant_type"])
	assert.Equal(t, "sub-key", tokenReq.Header.Get("Ocp-Apim-Subscription-Key"))
	assert.Equal(t, "123456", tokenReq.Header.Get("Merchant-Serial-Number"))

	createReq := f.requests[1]
	assert.Equal(t, "Bearer tok-123", createReq.Header.Get("Authorization"))
	assert.Equal(t, "order-1700000000123", createReq.Header.Get("Idempotency-Key"))
	assert.Equal(t, "storefront", createReq.Header.Get("Vipps-System-Name"))
	assert.Equal(t, "storefront-backend", createReq.Header.Get("Vipps-System-Plugin-Name"))
	assert.Equal(t, map[string]interface{}{"currency": "NOK", "value": float64(30000)}, createReq.Body["amount"])
	assert.Equal(t, map[string]interface{}{"type": "WALLET"}, createReq.Body["paymentMethod"])
	assert.Equal(t, map[string]interface{}{"phoneNumber": "4791234567"}, createReq.Body["customer"])
	assert.Equal(t, "WEB_REDIRECT", createReq.Body["userFlow"])
	assert.Equal(t, true, createReq.Body["autocapture"])
	assert.Equal(t, "2x Lekeland", createReq.Body["paymentDescription"])
}

func TestCreatePaymentTokenNotFound(t *testing.T) {
	f := &fakeVipps{createBody: `{"reference":"order-123456"}`}
	client := newTestClient(t, f)

	_, err := client.CreatePayment(context.Background(), &provider.CreatePaymentRequest{AmountValue: 100, Reference: "order-123456"})
	assert.ErrorIs(t, err, provider.ErrPaymentTokenNotFound)
}

func TestCreatePaymentAPIError(t *testing.T) {
	f := &fakeVipps{createStatus: http.StatusBadRequest, createBody: `{"title":"Bad Request","detail":"invalid phone"}`}
	client := newTestClient(t, f)

	_, err := client.CreatePayment(context.Background(), &provider.CreatePaymentRequest{AmountValue: 100, Reference: "order-123456"})

	var perr *provider.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, provider.ErrCodeAPI, perr.Code)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.JSONEq(t, `{"title":"Bad Request","detail":"invalid phone"}`, perr.Details)
}

func TestTokenFailureStopsOperation(t *testing.T) {
	f := &fakeVipps{tokenStatus: http.StatusUnauthorized}
	client := newTestClient(t, f)

	_, err := client.CapturePayment(context.Background(), "order-123456", 100)

	var perr *provider.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
	assert.Len(t, f.requests, 1)
}

func TestCaptureAndRefund(t *testing.T) {
	f := &fakeVipps{modifyBody: `{"reference":"order-123456","aggregate":{"capturedAmount":{"value":30000,"currency":"NOK"}}}`}
	client := newTestClient(t, f)
	ctx := context.Background()

	captured, err := client.CapturePayment(ctx, "order-123456", 30000)
	require.NoError(t, err)
	require.NotNil(t, captured.Aggregate)
	assert.Equal(t, int64(30000), captured.Aggregate.CapturedAmount.Value)
	assert.JSONEq(t, f.modifyBody, string(captured.Raw))

	_, err = client.RefundPayment(ctx, "order-123456", 15000)
	require.NoError(t, err)

	require.Len(t, f.requests, 4)
	captureReq, refundReq := f.requests[1], f.requests[3]

	assert.Equal(t, "/epayment/v1/payments/order-123456/capture", captureReq.Path)
	assert.Equal(t, "key-1", captureReq.Header.Get("Idempotency-Key"))
	assert.Equal(t, map[string]interface{}{"currency": "NOK", "value": float64(30000)}, captureReq.Body["modificationAmount"])

	assert.Equal(t, "/epayment/v1/payments/order-123456/refund", refundReq.Path)
	assert.Equal(t, map[string]interface{}{"currency": "NOK", "value": float64(15000)}, refundReq.Body["modificationAmount"])
}

func TestModifyUsesFreshKeyPerCall(t *testing.T) {
	f := &fakeVipps{modifyBody: `{}`}
	client := newTestClient(t, f)
	client.newKey = NewClient(Config{}, zap.NewNop()).newKey

	_, err := client.CapturePayment(context.Background(), "order-123456", 100)
	require.NoError(t, err)
	_, err = client.CapturePayment(context.Background(), "order-123456", 100)
	require.NoError(t, err)

	first := f.requests[1].Header.Get("Idempotency-Key")
	second := f.requests[3].Header.Get("Idempotency-Key")
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestGetPayment(t *testing.T) {
	client := newTestClient(t, &fakeVipps{})

	details, err := client.GetPayment(context.Background(), "order-123456")
	require.NoError(t, err)
	assert.Equal(t, "AUTHORIZED", details.State)
	require.NotNil(t, details.Aggregate)
	assert.Equal(t, int64(30000), details.Aggregate.AuthorizedAmount.Value)
}
