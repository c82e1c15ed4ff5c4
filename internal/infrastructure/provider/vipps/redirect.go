package vipps

import (
	"encoding/json"
	"net/url"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
	"github.com/wekeepgrowing/storefront/internal/domain/provider"
)

const defaultDeeplinkURL = "https://api.vipps.no/dwo-api-application/v1/deeplink/vippsgateway"

type redirectSource int

const (
	redirectNotFound redirectSource = iota
	redirectFromURL
	redirectFromToken
)

type redirectResult struct {
	URL          string
	Source       redirectSource
	PSPReference string
	Aggregate    *entity.Aggregate
}

type createPaymentResponse struct {
	URL          string            `json:"url"`
	RedirectURL  string            `json:"redirectUrl"`
	Token        string            `json:"token"`
	PaymentToken string            `json:"paymentToken"`
	PSPReference string            `json:"pspReference"`
	Aggregate    *entity.Aggregate `json:"aggregate"`
	Data         struct {
		Token string `json:"token"`
	} `json:"data"`
}

// parseRedirect finds where to send the buyer. A redirect URL wins; otherwise
// a payment token is turned into a deep link.
func parseRedirect(body []byte, deeplinkURL string) (redirectResult, error) {
	var resp createPaymentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return redirectResult{}, &provider.ProviderError{
			Code:    provider.ErrCodeParse,
			Message: "Failed to parse create payment response",
			Details: string(body),
		}
	}

	result := redirectResult{PSPReference: resp.PSPReference, Aggregate: resp.Aggregate}

	if u := firstNonEmpty(resp.URL, resp.RedirectURL); u != "" {
		result.URL = u
		result.Source = redirectFromURL
		return result, nil
	}

	if token := firstNonEmpty(resp.Token, resp.PaymentToken, resp.Data.Token); token != "" {
		if deeplinkURL == "" {
			deeplinkURL = defaultDeeplinkURL
		}
		result.URL = deeplinkURL + "?v=2&token=" + url.QueryEscape(token)
		result.Source = redirectFromToken
		return result, nil
	}

	result.Source = redirectNotFound
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
