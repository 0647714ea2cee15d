package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "nope")
	t.Setenv("CFG_TEST_BOOL", "false")
	t.Setenv("CFG_TEST_DUR", "3s")

	assert.Equal(t, 7, EnvIntDefault("CFG_TEST_INT", 7))
	assert.False(t, EnvBoolDefault("CFG_TEST_BOOL", true))
	assert.True(t, EnvBoolDefault("CFG_TEST_MISSING", true))
	assert.Equal(t, 3*time.Second, EnvDurationDefault("CFG_TEST_DUR", time.Second))
	assert.Equal(t, "x", EnvDefault("CFG_TEST_MISSING", "x"))
}

func TestLoad(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("COOKIE_SECURE", "")

	cfg := Load()
	require.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []byte("s3cret"), cfg.JWTAccessSecret)
	assert.True(t, cfg.CookieSecure)
}
