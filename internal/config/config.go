package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	JWTSecret    string
	TokenTTL     time.Duration
	GinMode      string
	UploadDir    string
	OpenAIAPIKey string
}

func Load() *Config {
	// Missing .env is fine; environment variables win either way.
	_ = godotenv.Load()

	return &Config{
		DBDriver:     getEnv("DB_DRIVER", "postgres"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "taskhub"),
		DBPassword:   getEnv("DB_PASSWORD", "taskhub"),
		DBName:       getEnv("DB_NAME", "taskhub"),
		JWTSecret:    getEnv("JWT_SECRET", "default-secret-key-change-me"),
		TokenTTL:     getDurationEnv("TOKEN_TTL", 24*time.Hour),
		GinMode:      getEnv("GIN_MODE", "debug"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
