package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application. Policy parameters are
// explicit here and handed to components at construction; nothing reads
// ambient settings at call time.
type Config struct {
	Port        string
	DatabaseURL string
	Version     string
	LogLevel    string

	// AI providers
	OpenAIKey           string // OpenAI platform key (fallback, or primary when Azure unset)
	AzureOpenAIKey      string
	AzureOpenAIEndpoint string
	AzureGPTDeployment  string
	AITimeoutSeconds    int // Per-call gateway timeout in seconds

	// Automation policy
	FreshnessWindowMinutes int // Emails older than this are not worth automating
	RecentEmailLimit       int // Analytics scan window
	DraftVariantCount      int // Default variant batch size
	SummaryCacheTTLMinutes int // Thread summary cache lifetime
	ActiveThreadThreshold  int // Email count above which a reply is suggested

	// Outbound replies
	SendGridAPIKey   string
	ReplyFromAddress string
	ReplyFromName    string
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Version:     getEnv("VERSION", "1.0.0"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		AzureOpenAIKey:      os.Getenv("AZURE_OPENAI_KEY"),
		AzureOpenAIEndpoint: os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureGPTDeployment:  getEnv("AZURE_OPENAI_GPT_DEPLOYMENT", "gpt-4o-mini"),
		AITimeoutSeconds:    getEnvInt("AI_TIMEOUT_SECONDS", 8),

		FreshnessWindowMinutes: getEnvInt("FRESHNESS_WINDOW_MINUTES", 60),
		RecentEmailLimit:       getEnvInt("RECENT_EMAIL_LIMIT", 10),
		DraftVariantCount:      getEnvInt("DRAFT_VARIANT_COUNT", 3),
		SummaryCacheTTLMinutes: getEnvInt("SUMMARY_CACHE_TTL_MINUTES", 5),
		ActiveThreadThreshold:  getEnvInt("ACTIVE_THREAD_THRESHOLD", 3),

		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		ReplyFromAddress: getEnv("REPLY_FROM_ADDRESS", "noreply@mailflow.local"),
		ReplyFromName:    getEnv("REPLY_FROM_NAME", "Mailflow"),
	}

	return config
}

// UseAzureOpenAI reports whether Azure OpenAI is configured as primary
func (c *Config) UseAzureOpenAI() bool {
	return c.AzureOpenAIKey != "" && c.AzureOpenAIEndpoint != ""
}

// HasAIProvider reports whether any AI backend is configured
func (c *Config) HasAIProvider() bool {
	return c.UseAzureOpenAI() || c.OpenAIKey != ""
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "mailflow").
		Str("version", c.Version).
		Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}
