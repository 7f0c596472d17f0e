package config

import "os"

// Config holds the application configuration. Everything comes from the
// environment; .env files are loaded by main before this runs.
type Config struct {
	// Environment
	Environment string
	Port        string

	// LLM API keys for the producer (remote expansion) pass
	OpenAIAPIKey string
	GeminiAPIKey string

	// External identity data service (wallet/social snapshot source).
	// Empty means generation runs on default constraints only.
	IdentityServiceURL string

	// Persistence (optional - empty disables song storage)
	DatabaseURL string

	// Observability
	SentryDSN         string
	CloudWatchEnabled bool
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseHost      string
	LangfuseEnabled   bool

	// Auth mode
	// - "none": no auth (self-hosted, local dev)
	// - "gateway": trust X-User-* headers from the hosting gateway
	// - "jwt": validate bearer tokens signed with JWTSecret
	AuthMode  string
	JWTSecret string
}

func Load() *Config {
	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		IdentityServiceURL: getEnv("IDENTITY_SERVICE_URL", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		CloudWatchEnabled:  getEnv("CLOUDWATCH_ENABLED", "false") == "true",
		LangfusePublicKey:  getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:  getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:       getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:    getEnv("LANGFUSE_ENABLED", "false") == "true",
		AuthMode:           getEnv("AUTH_MODE", "none"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind a trusted gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// HasPersistence returns true if a database is configured
func (c *Config) HasPersistence() bool {
	return c.DatabaseURL != ""
}
