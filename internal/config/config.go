package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/wekeepgrowing/storefront/pkg/config"
	"github.com/wekeepgrowing/storefront/pkg/logger"
)

const serviceName = "storefront"

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       logger.Config   `mapstructure:"log"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Vipps     VippsConfig     `mapstructure:"vipps"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Session   SessionConfig   `mapstructure:"session"`
}

// SessionConfig configures the checkout cookie used when a client does not
// send X-Session-Id. An empty secret disables the cookie.
type SessionConfig struct {
	CookieSecret string        `mapstructure:"cookie_secret"`
	CookieMaxAge time.Duration `mapstructure:"cookie_max_age"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	AdminTTL time.Duration `mapstructure:"admin_ttl"`
}

type ReconcileConfig struct {
	// SettleDelay is how long the payment-return flow waits before issuing a manual capture.
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	// RefreshAggregate fetches the provider aggregate when the session has none.
	RefreshAggregate bool `mapstructure:"refresh_aggregate"`
}

func LoadConfig() (*Config, error) {
	src, err := pkgconfig.Load(serviceName, pkgconfig.Options{
		Defaults:    defaults(),
		EnvAliases:  envAliases(),
		DotEnvFiles: []string{".env"},
	})
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := src.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.HTTP.Port <= 0 {
		return fmt.Errorf("server.http.port must be positive")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.Session.CookieSecret != "" && len(c.Session.CookieSecret) < 32 {
		return fmt.Errorf("session.cookie_secret must be at least 32 bytes")
	}
	if c.Reconcile.SettleDelay < 0 {
		return fmt.Errorf("reconcile.settle_delay must not be negative")
	}
	return nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"service.name":         serviceName,
		"service.environment":  "dev",
		"service.version":      "0.1.0",
		"service.static_dir":   "",
		"service.cors_origins": []string{"*"},

		"server.http.host": "0.0.0.0",
		"server.http.port": 4000,
		"server.grpc.host": "0.0.0.0",
		"server.grpc.port": 0,

		"database.host":               "localhost",
		"database.port":               5432,
		"database.name":               "storefront",
		"database.user":               "storefront",
		"database.password":           "",
		"database.sslmode":            "disable",
		"database.max_open_conns":     20,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "30m",
		"database.conn_max_idle_time": "5m",
		"database.log_level":          "warn",
		"database.slow_threshold":     "200ms",
		"database.auto_migrate":       true,
		"database.connect_timeout":    "1m",

		"redis.addr":        "",
		"redis.password":    "",
		"redis.db":          0,
		"redis.session_ttl": "24h",

		"log.level":        "info",
		"log.format":       "json",
		"log.output":       "stdout",
		"log.file_path":    "",
		"log.max_size_mb":  100,
		"log.max_backups":  5,
		"log.max_age_days": 30,
		"log.development":  false,

		"jwt.secret":    "",
		"jwt.issuer":    serviceName,
		"jwt.admin_ttl": "12h",

		"vipps.client_id":              "",
		"vipps.client_secret":          "",
		"vipps.subscription_key":       "",
		"vipps.merchant_serial_number": "",
		"vipps.token_url":              "https://api.vipps.no/accesstoken/get",
		"vipps.payments_url":           "https://api.vipps.no/epayment/v1/payments",
		"vipps.deeplink_url":           "https://api.vipps.no/dwo-api-application/v1/deeplink/vippsgateway",
		"vipps.currency":               "NOK",
		"vipps.system_name":            serviceName,
		"vipps.system_version":         "0.1.0",
		"vipps.plugin_name":            serviceName + "-backend",
		"vipps.plugin_version":         "0.1.0",
		"vipps.timeout":                "15s",

		"reconcile.settle_delay":      "2s",
		"reconcile.refresh_aggregate": true,

		"session.cookie_secret":  "",
		"session.cookie_max_age": "24h",
		"session.cookie_secure":  true,
	}
}

// envAliases keeps the unprefixed variable names used by existing deployments.
func envAliases() map[string][]string {
	return map[string][]string{
		"server.http.port":             {"PORT"},
		"jwt.secret":                   {"JWT_SECRET"},
		"vipps.client_id":              {"VIPPS_CLIENT_ID"},
		"vipps.client_secret":          {"VIPPS_CLIENT_SECRET"},
		"vipps.subscription_key":       {"VIPPS_SUBSCRIPTION_KEY", "OCP_APIM_SUBSCRIPTION_KEY"},
		"vipps.merchant_serial_number": {"VIPPS_MERCHANT_SERIAL_NUMBER", "MERCHANT_SERIAL_NUMBER"},
		"vipps.token_url":              {"VIPPS_TOKEN_URL"},
		"database.password":            {"DATABASE_PASSWORD"},
		"redis.addr":                   {"REDIS_ADDR"},
		"session.cookie_secret":        {"SESSION_SECRET"},
	}
}
