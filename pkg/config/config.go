package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const devJWTSecret = "supersecretjwtkey"

type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	MongoDatabase           string
	JWTSecret               string
	RedisURL                string
	FirebaseCredentialsPath string
	LogLevel                string
	LogPretty               bool
	WSRequireAuth           bool
	CookieSecure            bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialmedia"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		RedisURL:                getEnv("REDIS_URL", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogPretty:               getBool("LOG_PRETTY", false),
		WSRequireAuth:           getBool("WS_REQUIRE_AUTH", false),
		CookieSecure:            getBool("COOKIE_SECURE", false),
	}
}

// Validate checks required settings and fills development defaults.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET environment variable not set")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI environment variable not set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
