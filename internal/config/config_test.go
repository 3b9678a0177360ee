package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := FromViper(newViper())

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, "permissive", cfg.OrderStatusPolicy)
	assert.Equal(t, 64, cfg.BroadcastBuffer)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.AllowAdminSignup)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ORDER_STATUS_POLICY", "FORWARD")
	t.Setenv("PRODUCT_CACHE_TTL", "30s")
	t.Setenv("ALLOW_ADMIN_SIGNUP", "true")

	cfg := FromViper(newViper())

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "forward", cfg.OrderStatusPolicy)
	assert.Equal(t, 30*time.Second, cfg.ProductCacheTTL)
	assert.True(t, cfg.AllowAdminSignup)
}
