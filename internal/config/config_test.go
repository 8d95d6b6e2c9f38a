package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CART_STORAGE", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "")
	t.Setenv("SHIPPING_FEE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageFile, cfg.Storage)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, decimal.NewFromInt(50).Equal(cfg.Pricing.FreeShippingThreshold))
	assert.True(t, decimal.RequireFromString("5.99").Equal(cfg.Pricing.ShippingFee))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CART_STORAGE", "SQLite")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SHIPPING_FEE", "3.50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, decimal.RequireFromString("3.5").Equal(cfg.Pricing.ShippingFee))
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown storage", env: map[string]string{"CART_STORAGE": "redis"}},
		{name: "postgres without url", env: map[string]string{"CART_STORAGE": "postgres", "DATABASE_URL": ""}},
		{name: "bad fee", env: map[string]string{"SHIPPING_FEE": "five"}},
		{name: "negative threshold", env: map[string]string{"FREE_SHIPPING_THRESHOLD": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
