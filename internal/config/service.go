package config

import "time"

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	// StaticDir is the built storefront served with index.html fallback. Empty disables it.
	StaticDir   string   `mapstructure:"static_dir"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type VippsConfig struct {
	ClientID             string        `mapstructure:"client_id"`
	ClientSecret         string        `mapstructure:"client_secret"`
	SubscriptionKey      string        `mapstructure:"subscription_key"`
	MerchantSerialNumber string        `mapstructure:"merchant_serial_number"`
	TokenURL             string        `mapstructure:"token_url"`
	PaymentsURL          string        `mapstructure:"payments_url"`
	DeeplinkURL          string        `mapstructure:"deeplink_url"`
	Currency             string        `mapstructure:"currency"`
	SystemName           string        `mapstructure:"system_name"`
	SystemVersion        string        `mapstructure:"system_version"`
	PluginName           string        `mapstructure:"plugin_name"`
	PluginVersion        string        `mapstructure:"plugin_version"`
	Timeout              time.Duration `mapstructure:"timeout"`
}
