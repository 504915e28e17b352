package config

import "os"

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Database
	DatabaseURL string

	// LLM API Keys
	OpenAIAPIKey string // OpenAI API key for GPT models
	GeminiAPIKey string // Google Gemini API key

	// Proposer model (gpt-* or gemini-*)
	ProposerModel string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse

	// Metrics
	AWSRegion string // CloudWatch region

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from the cloud gateway
	// - "jwt": Validate bearer tokens issued by this API
	AuthMode  string
	JWTSecret string
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		ProposerModel:     getEnv("PROPOSER_MODEL", "gpt-5-mini"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		AuthMode:          getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
		JWTSecret:         getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind the cloud gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}
