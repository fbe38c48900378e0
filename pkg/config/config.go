package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	// DSN for the shared store all terminals write to.
	DBDSN string

	// OIDC settings are optional; when the issuer is empty the server
	// runs without token verification (local development).
	OIDCIssuer   string
	OIDCClientID string
}

func Load() Config {
	return Config{
		AppEnv:       getEnv("APP_ENV", "dev"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		HTTPPort:     getEnvInt("HTTP_PORT", 8080),
		DBDSN:        getEnv("DB_DSN", "host=localhost user=postgres password=postgres dbname=kasirpos port=5432 sslmode=disable"),
		OIDCIssuer:   getEnv("OIDC_ISSUER", ""),
		OIDCClientID: getEnv("OIDC_CLIENT_ID", ""),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
