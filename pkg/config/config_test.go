package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DATABASE", "testdb")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("WS_REQUIRE_AUTH", "true")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "testdb", cfg.MongoDatabase)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.True(t, cfg.WSRequireAuth)
	assert.False(t, cfg.LogPretty)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MONGO_DATABASE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("WS_REQUIRE_AUTH", "not-a-bool")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "socialmedia", cfg.MongoDatabase)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.WSRequireAuth)
}

func TestValidate_DevelopmentSecretDefault(t *testing.T) {
	cfg := &Config{Env: "development", MongoURI: "mongodb://localhost"}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	cfg := &Config{Env: "production", MongoURI: "mongodb://localhost"}

	assert.Error(t, cfg.Validate())
}

func TestIndexModels_SingleTextIndexPerCollection(t *testing.T) {
	for collection, models := range IndexModels() {
		textIndexes := 0
		for _, m := range models {
			if strings.HasSuffix(*m.Options.Name, "_text") {
				textIndexes++
			}
		}
		assert.LessOrEqual(t, textIndexes, 1, collection)
	}
}
