package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server Settings
	AppPort string
	HOST    string

	// MongoDB Settings
	MongoURI string
	MongoDB  string

	// Identity Provider Settings
	AuthJWTSecret string
	AuthIssuer    string
	AdminEmail    string

	// Upload Settings
	UploadDir string

	// Offer Settings
	OfferTTLHours int
}

func LoadConfig() *Config {
	// .env is optional in deployed environments where variables are injected directly
	_ = godotenv.Load()

	config := &Config{
		AppPort: getEnv("PORT", "5000"),
		HOST:    getEnv("HOST", "0.0.0.0"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "relove"),

		AuthJWTSecret: os.Getenv("AUTH_JWT_SECRET"),
		AuthIssuer:    os.Getenv("AUTH_ISSUER"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),

		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),

		OfferTTLHours: getEnvInt("OFFER_TTL_HOURS", 48),
	}

	return config
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
