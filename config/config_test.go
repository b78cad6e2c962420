package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"CALC_ADDR", "CALC_STORE", "CALC_OPEN_BROWSER", "CALC_REDIS_DB", "CALC_TOKEN_TTL_MINUTES", "CALC_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.True(t, cfg.OpenBrowser)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CALC_ADDR", ":9090")
	t.Setenv("CALC_STORE", "SQLite")
	t.Setenv("CALC_OPEN_BROWSER", "false")
	t.Setenv("CALC_REDIS_DB", "3")
	t.Setenv("CALC_TOKEN_TTL_MINUTES", "5")
	t.Setenv("CALC_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.False(t, cfg.OpenBrowser)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 5*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CALC_OPEN_BROWSER", "maybe")
	t.Setenv("CALC_REDIS_DB", "two")

	assert.True(t, getEnvAsBool("CALC_OPEN_BROWSER", true))
	assert.Equal(t, 7, getEnvAsInt("CALC_REDIS_DB", 7))
}
