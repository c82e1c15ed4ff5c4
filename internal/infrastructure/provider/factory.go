package provider

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/config"
	"github.com/wekeepgrowing/storefront/internal/domain/provider"
	"github.com/wekeepgrowing/storefront/internal/infrastructure/provider/vipps"
)

// NewGateway builds the payment gateway from configuration.
func NewGateway(cfg *config.VippsConfig, logger *zap.Logger) (provider.PaymentGateway, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("vipps client credentials not configured")
	}
	if cfg.SubscriptionKey == "" || cfg.MerchantSerialNumber == "" {
		return nil, fmt.Errorf("vipps subscription key and merchant serial number are required")
	}

	var opts []vipps.Option
	if cfg.Timeout > 0 {
		opts = append(opts, vipps.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	return vipps.NewClient(vipps.Config{
		ClientID:             cfg.ClientID,
		ClientSecret:         cfg.ClientSecret,
		SubscriptionKey:      cfg.SubscriptionKey,
		MerchantSerialNumber: cfg.MerchantSerialNumber,
		TokenURL:             cfg.TokenURL,
		PaymentsURL:          cfg.PaymentsURL,
		DeeplinkURL:          cfg.DeeplinkURL,
		Currency:             cfg.Currency,
		SystemName:           cfg.SystemName,
		SystemVersion:        cfg.SystemVersion,
		PluginName:           cfg.PluginName,
		PluginVersion:        cfg.PluginVersion,
	}, logger, opts...), nil
}
