package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jwebster45206/verdant-hollow/pkg/story"
	"github.com/jwebster45206/verdant-hollow/pkg/textfilter"
)

// LLM providers that can back the encounter generator.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Save backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	LLMProvider     string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string
	ModelName       string

	StorageBackend string
	RedisURL       string
	DatabaseURL    string
	SaveDir        string

	ContentRating textfilter.Rating
	EncounterMode story.Mode
	MaxEncounters int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		LLMProvider:     parseProvider(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		ModelName:       os.Getenv("MODEL_NAME"),

		StorageBackend: parseBackend(getEnv("STORAGE_BACKEND", BackendFile)),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SaveDir:        getEnv("SAVE_DIR", ".saves"),

		ContentRating: textfilter.ParseRating(getEnv("CONTENT_RATING", string(textfilter.RatingPG13))),
		EncounterMode: story.ParseMode(getEnv("ENCOUNTER_MODE", string(story.ModeScripted))),
		MaxEncounters: getEnvInt("MAX_ENCOUNTERS", story.DefaultMaxEncounters),
	}
}

// APIKey returns the key for the configured provider, or "" when the
// provider has none.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return ""
	}
}

// LLMEnabled reports whether a provider is selected and has a key.
func (c *Config) LLMEnabled() bool {
	return c.LLMProvider != ProviderNone && c.APIKey() != ""
}

func parseProvider(p string) string {
	switch p = strings.ToLower(strings.TrimSpace(p)); p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return p
	default:
		return ProviderNone
	}
}

func parseBackend(b string) string {
	switch b = strings.ToLower(strings.TrimSpace(b)); b {
	case BackendRedis, BackendPostgres:
		return b
	default:
		return BackendFile
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
