package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadForService_PrefixOverrides(t *testing.T) {
	t.Setenv("DB_NAME", "shared")
	t.Setenv("ORDERS_DB_NAME", "orders_db")
	t.Setenv("ORDERS_HTTP_PORT", "8082")

	cfg := LoadForService("ORDERS")

	assert.Equal(t, "ORDERS", cfg.ServiceName)
	assert.Equal(t, "orders_db", cfg.DBName)
	assert.Equal(t, "8082", cfg.HTTPPort)
}

func TestLoad_TypedValues(t *testing.T) {
	t.Setenv("ORDER_TRANSACTION_FEE_RATE", "0.1")
	t.Setenv("OUTBOX_RELAY_INTERVAL", "5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()

	assert.Equal(t, "0.1", cfg.TransactionFeeRate.String())
	assert.Equal(t, 5*time.Second, cfg.OutboxRelayInterval)
	assert.Equal(t, 40, cfg.RateLimitBurst)
}

func TestLoad_DefaultFeeRate(t *testing.T) {
	t.Setenv("ORDER_TRANSACTION_FEE_RATE", "")

	cfg := Load()

	assert.Equal(t, "0.05", cfg.TransactionFeeRate.String())
}
