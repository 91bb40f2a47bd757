package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port     string
	MongoURI string
	DBName   string

	JWTSecret   string
	JWTTTLHours int

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	// ClientURL is where the OAuth callback redirects with the issued token.
	ClientURL string
}

func Load() (*Config, error) {
	ttl := 24 * 7
	if v := getEnv("JWT_TTL_HOURS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:             getEnv("MONGODB_DB", "personal_library"),
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		JWTTTLHours:        ttl,
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		ClientURL:          getEnv("CLIENT_URL", "http://localhost:3000"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
