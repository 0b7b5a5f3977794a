package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "SFTEST_"

func setRequiredEnv(t *testing.T) {
	t.Helper()

	vars := map[string]string{
		"primary.env":                        "development",
		"server.port":                        "8080",
		"server.read_timeout":                "30",
		"server.write_timeout":               "30",
		"server.idle_timeout":                "60",
		"server.cors_allowed_origins":        "http://localhost:3000,https://shop.example.com",
		"database.host":                      "localhost",
		"database.port":                      "5432",
		"database.user":                      "postgres",
		"database.password":                  "postgres",
		"database.name":                      "storefront",
		"database.ssl_mode":                  "disable",
		"database.max_open_conns":            "25",
		"database.max_idle_conns":            "25",
		"database.conn_max_lifetime":         "300",
		"database.conn_max_idle_time":        "300",
		"redis.address":                      "localhost:6379",
		"auth.secret_key":                    "sk_test_123",
		"integration.resend_api_key":         "re_123",
		"integration.email_from":             "Bloom <orders@example.com>",
		"payment.base_url":                   "https://sandbox-pay.example.com",
		"payment.api_key":                    "api-key",
		"payment.secret_key":                 "secret-key",
		"payment.webhook_secret":             "whsec",
		"storefront.site_name":               "Bloom",
		"storefront.public_url":              "https://shop.example.com",
		"storefront.api_url":                 "https://api.example.com",
		"storefront.currency":                "USD",
		"storefront.delivery_fee":            "9.90",
		"storefront.free_delivery_threshold": "75",
	}
	for k, v := range vars {
		t.Setenv(testPrefix+k, v)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(testPrefix)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://shop.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 5432, cfg.Database.Port)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)

	assert.Equal(t, "org:admin", cfg.Auth.AdminRole)
	assert.Equal(t, 15*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, 2*time.Hour, cfg.Storefront.PendingOrderTTL)
	assert.Equal(t, 50, cfg.Jobs.ImportChunkSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Jobs.ImportDelay)
	assert.Equal(t, time.Second, cfg.Jobs.ReconcileDelay)
	assert.Equal(t, "*/10 * * * *", cfg.Jobs.ExpireOrdersSchedule)
}

func TestLoad_ParsesDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(testPrefix+"storefront.pending_order_ttl", "45m")
	t.Setenv(testPrefix+"jobs.import_delay", "2s")
	t.Setenv(testPrefix+"jobs.reconcile_delay", "250ms")

	cfg, err := Load(testPrefix)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Minute, cfg.Storefront.PendingOrderTTL)
	assert.Equal(t, 2*time.Second, cfg.Jobs.ImportDelay)
	assert.Equal(t, 250*time.Millisecond, cfg.Jobs.ReconcileDelay)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(testPrefix+"payment.webhook_secret", "")

	_, err := Load(testPrefix)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WebhookSecret")
}

func TestLoad_InvalidCurrency(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(testPrefix+"storefront.currency", "DOLLARS")

	_, err := Load(testPrefix)
	require.Error(t, err)
}

func TestStorefrontConfig_Amounts(t *testing.T) {
	s := StorefrontConfig{DeliveryFee: "9.90", FreeDeliveryThreshold: "75"}

	assert.True(t, decimal.RequireFromString("9.90").Equal(s.DeliveryFeeAmount()))

	threshold, ok := s.FreeDeliveryAmount()
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(75).Equal(threshold))

	_, ok = StorefrontConfig{}.FreeDeliveryAmount()
	assert.False(t, ok)
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	cfg.Logging.Level = ""

	cfg.Environment = "production"
	assert.Equal(t, "info", cfg.GetLogLevel())

	cfg.Environment = "development"
	assert.Equal(t, "debug", cfg.GetLogLevel())

	cfg.Logging.Level = "warn"
	assert.Equal(t, "warn", cfg.GetLogLevel())
}
