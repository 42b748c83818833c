package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"kafka:9092", "kafka2:9092"}, CSV(" kafka:9092, ,kafka2:9092 "))
}

func TestEnvIntDefault(t *testing.T) {
	t.Setenv("STORE_TEST_INT", "42")
	assert.Equal(t, 42, EnvIntDefault("STORE_TEST_INT", 1))

	t.Setenv("STORE_TEST_INT", "abc")
	assert.Equal(t, 1, EnvIntDefault("STORE_TEST_INT", 1))

	assert.Equal(t, 7, EnvIntDefault("STORE_TEST_INT_UNSET", 7))
}

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/store")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ES_INDEX", "")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "postgres://localhost/store", cfg.DatabaseURL)
	assert.Equal(t, []byte("secret"), cfg.JWTAccessSecret)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "products", cfg.ESIndex)
	assert.Equal(t, "debug", cfg.LogLevel)

	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, "info", Load().LogLevel)
}
