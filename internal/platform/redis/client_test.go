package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintbank/internal/platform/config"
)

func TestNewWithoutURL(t *testing.T) {
	client, err := New(config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client, "an empty URL means Redis is not configured")
}

func TestWithDefaults(t *testing.T) {
	t.Run("fills unset fields", func(t *testing.T) {
		cfg := withDefaults(config.RedisConfig{URL: "redis://localhost:6379"})

		assert.Equal(t, defaultPoolSize, cfg.PoolSize)
		assert.Equal(t, defaultMinIdleConns, cfg.MinIdleConns)
		assert.Equal(t, defaultDialTimeout, cfg.DialTimeout)
		assert.Equal(t, defaultIOTimeout, cfg.ReadTimeout)
		assert.Equal(t, defaultIOTimeout, cfg.WriteTimeout)
	})

	t.Run("keeps explicit tuning", func(t *testing.T) {
		cfg := withDefaults(config.RedisConfig{
			URL:         "redis://localhost:6379",
			PoolSize:    50,
			DialTimeout: time.Second,
		})

		assert.Equal(t, 50, cfg.PoolSize)
		assert.Equal(t, time.Second, cfg.DialTimeout)
		assert.Equal(t, defaultMinIdleConns, cfg.MinIdleConns)
	})
}
