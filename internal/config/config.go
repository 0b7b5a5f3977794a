// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it is loaded into the
	// process env before any config is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

/*
	Env vars are read using the prefix STOREFRONT_. After the prefix is
	removed the key is lowercased and "." is used as the nesting delimiter:

		STOREFRONT_SERVER.PORT        -> server.port        -> Config.Server.Port
		STOREFRONT_PAYMENT.SECRET_KEY -> payment.secret_key -> Config.Payment.SecretKey

	Underscores are part of the key name, dots separate struct levels.
*/

// EnvPrefix is the prefix every storefront environment variable carries.
const EnvPrefix = "STOREFRONT_"

// ServiceName labels logs, traces and APM dashboards.
const ServiceName = "storefront"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration" validate:"required"`
	Payment       PaymentConfig        `koanf:"payment" validate:"required"`
	Storefront    StorefrontConfig     `koanf:"storefront" validate:"required"`
	Jobs          JobsConfig           `koanf:"jobs"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
// ConnMaxLifetime and ConnMaxIdleTime are in seconds.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port". Redis backs carts and the job queue.
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores the OAuth provider (Clerk) secret and the organization
// role that unlocks the admin API.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required"`
	AdminRole string `koanf:"admin_role"`
}

// IntegrationConfig holds third-party SaaS credentials.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key" validate:"required"`
	EmailFrom    string `koanf:"email_from" validate:"required"`
}

// PaymentConfig configures the hosted checkout payment gateway.
type PaymentConfig struct {
	BaseURL       string        `koanf:"base_url" validate:"required,url"`
	APIKey        string        `koanf:"api_key" validate:"required"`
	SecretKey     string        `koanf:"secret_key" validate:"required"`
	WebhookSecret string        `koanf:"webhook_secret" validate:"required"`
	Timeout       time.Duration `koanf:"timeout"`
}

// StorefrontConfig holds the business settings of the shop.
//
// PublicURL is the customer-facing site (used for redirects, sitemap and
// canonical URLs), APIURL is where this server is reachable by the payment
// gateway (used for the checkout callback URL).
type StorefrontConfig struct {
	SiteName              string        `koanf:"site_name" validate:"required"`
	PublicURL             string        `koanf:"public_url" validate:"required,url"`
	APIURL                string        `koanf:"api_url" validate:"required,url"`
	Currency              string        `koanf:"currency" validate:"required,len=3"`
	DeliveryFee           string        `koanf:"delivery_fee" validate:"required,numeric"`
	FreeDeliveryThreshold string        `koanf:"free_delivery_threshold" validate:"omitempty,numeric"`
	PendingOrderTTL       time.Duration `koanf:"pending_order_ttl"`
}

// DeliveryFeeAmount returns the flat delivery fee as a decimal.
func (s StorefrontConfig) DeliveryFeeAmount() decimal.Decimal {
	fee, err := decimal.NewFromString(s.DeliveryFee)
	if err != nil {
		return decimal.Zero
	}
	return fee
}

// FreeDeliveryAmount returns the subtotal at which delivery becomes free.
// ok is false when no threshold is configured.
func (s StorefrontConfig) FreeDeliveryAmount() (amount decimal.Decimal, ok bool) {
	if s.FreeDeliveryThreshold == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(s.FreeDeliveryThreshold)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// JobsConfig controls periodic maintenance and the pacing of bulk import and
// payment reconciliation.
// Schedules use standard 5-field cron syntax.
type JobsConfig struct {
	ExpireOrdersSchedule string        `koanf:"expire_orders_schedule"`
	ReconcileSchedule    string        `koanf:"reconcile_schedule"`
	ImportChunkSize      int           `koanf:"import_chunk_size" validate:"omitempty,min=1,max=1000"`
	ImportDelay          time.Duration `koanf:"import_delay"`
	ReconcileDelay       time.Duration `koanf:"reconcile_delay"`
}

// LoadConfig loads configuration from environment variables, validates it,
// applies defaults and returns the resulting config.
func LoadConfig() (*Config, error) {
	return Load(EnvPrefix)
}

// Load is LoadConfig with an explicit env prefix.
func Load(prefix string) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, prefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	applyDefaults(mainConfig)

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name and environment always come from the primary block so
	// tracing and logging see consistent naming.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Observability == nil {
		cfg.Observability = DefaultObservabilityConfig()
	}
	if cfg.Auth.AdminRole == "" {
		cfg.Auth.AdminRole = "org:admin"
	}
	if cfg.Payment.Timeout == 0 {
		cfg.Payment.Timeout = 15 * time.Second
	}
	if cfg.Storefront.PendingOrderTTL == 0 {
		cfg.Storefront.PendingOrderTTL = 2 * time.Hour
	}
	if cfg.Jobs.ExpireOrdersSchedule == "" {
		cfg.Jobs.ExpireOrdersSchedule = "*/10 * * * *"
	}
	if cfg.Jobs.ReconcileSchedule == "" {
		cfg.Jobs.ReconcileSchedule = "*/15 * * * *"
	}
	if cfg.Jobs.ImportChunkSize == 0 {
		cfg.Jobs.ImportChunkSize = 50
	}
	if cfg.Jobs.ImportDelay == 0 {
		cfg.Jobs.ImportDelay = 500 * time.Millisecond
	}
	if cfg.Jobs.ReconcileDelay == 0 {
		cfg.Jobs.ReconcileDelay = time.Second
	}
}

// IsLocal reports whether the app runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
