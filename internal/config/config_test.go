package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, "db", cfg.Cart.Store)
	assert.True(t, cfg.Orders.Transactional)
	assert.Equal(t, "USD", cfg.Orders.Currency)
	assert.Equal(t, 100, cfg.Pagination.MaxPerPage)
	assert.False(t, cfg.Development())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("CART_TTL", "1h")
	t.Setenv("ORDERS_TRANSACTIONAL", "false")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.Cart.TTL)
	assert.False(t, cfg.Orders.Transactional)
	assert.True(t, cfg.Development())
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported db driver")
}

func TestLoad_RejectsUnknownCartStore(t *testing.T) {
	t.Setenv("CART_STORE", "memcached")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported cart store")
}
