package provider

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
)

// PaymentGateway is the payment provider surface used by the storefront.
// Every call obtains its own access token.
type PaymentGateway interface {
	// GetAccessToken fetches a client-credentials token.
	GetAccessToken(ctx context.Context) (string, error)

	// CreatePayment starts a WEB_REDIRECT wallet payment and returns where to send the buyer.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error)

	// CapturePayment captures amountValue minor units of a reserved payment.
	CapturePayment(ctx context.Context, reference string, amountValue int64) (*ModificationResponse, error)

	// RefundPayment refunds amountValue minor units of a captured payment.
	RefundPayment(ctx context.Context, reference string, amountValue int64) (*ModificationResponse, error)

	// GetPayment returns the provider's current view of a payment.
	GetPayment(ctx context.Context, reference string) (*PaymentDetails, error)
}

// CreatePaymentRequest is the payment session sent once to the provider.
type CreatePaymentRequest struct {
	AmountValue        int64  `json:"amountValue" validate:"required,gt=0"`
	PhoneNumber        string `json:"phoneNumber" validate:"required"`
	Reference          string `json:"reference" validate:"required,min=8,max=64"`
	ReturnURL          string `json:"returnUrl" validate:"required,url"`
	PaymentDescription string `json:"paymentDescription" validate:"required,max=100"`
}

// CreatePaymentResponse tells the buyer where to go next.
type CreatePaymentResponse struct {
	URL          string            `json:"url"`
	Reference    string            `json:"reference"`
	PSPReference string            `json:"pspReference,omitempty"`
	Aggregate    *entity.Aggregate `json:"aggregate,omitempty"`
}

// ModificationResponse is the provider's answer to a capture or refund. Raw
// holds the body verbatim so it can be passed through unchanged.
type ModificationResponse struct {
	Reference    string            `json:"reference"`
	PSPReference string            `json:"pspReference,omitempty"`
	Aggregate    *entity.Aggregate `json:"aggregate,omitempty"`
	Raw          json.RawMessage   `json:"-"`
}

// PaymentDetails is the subset of the provider's payment resource the storefront reads.
type PaymentDetails struct {
	Reference    string            `json:"reference"`
	PSPReference string            `json:"pspReference,omitempty"`
	State        string            `json:"state"`
	Aggregate    *entity.Aggregate `json:"aggregate,omitempty"`
}

// ErrPaymentTokenNotFound means the create response carried neither a redirect URL nor a token.
var ErrPaymentTokenNotFound = errors.New("Vipps payment token not found")

// Provider error codes
const (
	ErrCodeMarshal  = "MARSHAL_ERROR"
	ErrCodeRequest  = "REQUEST_ERROR"
	ErrCodeAPI      = "API_ERROR"
	ErrCodeResponse = "RESPONSE_ERROR"
	ErrCodeParse    = "PARSE_ERROR"
)

// ProviderError is a failed provider call. Details holds the provider body when one was received.
type ProviderError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// DetailsValue returns Details as raw JSON when it is JSON, otherwise as a string,
// so error responses can embed the provider body unchanged.
func (e *ProviderError) DetailsValue() interface{} {
	if e.Details == "" {
		return e.Message
	}
	if json.Valid([]byte(e.Details)) {
		return json.RawMessage(e.Details)
	}
	return e.Details
}

// ErrorDetails extracts a response-friendly description of any gateway error.
func ErrorDetails(err error) interface{} {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.DetailsValue()
	}
	return err.Error()
}
