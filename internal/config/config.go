package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported AI providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultPlaceholderPoster is shown when no real or generated artwork exists.
const DefaultPlaceholderPoster = "https://placehold.co/500x750.png"

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string

	// Catalog file; empty means the embedded catalog.
	CatalogPath string

	// AI provider
	AIProvider      string // gemini, openai or anthropic (default: gemini)
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	TextModel       string // provider default when empty
	ImageModel      string // provider default when empty
	AITimeout       time.Duration

	// HTTP server
	HTTPAddr           string
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration

	// Posters
	PosterCacheTTL       time.Duration // how long a session keeps a generated poster
	PosterCacheSize      int           // maximum generated posters held in memory
	PlaceholderPosterURL string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:         getEnv("DATABASE_PATH", "data/cinetrivia.db"),
		CatalogPath:          getEnv("CATALOG_PATH", ""),
		AIProvider:           normalizeProvider(os.Getenv("AI_PROVIDER")),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:      getEnv("ANTHROPIC_API_KEY", ""),
		TextModel:            getEnv("TEXT_MODEL", ""),
		ImageModel:           getEnv("IMAGE_MODEL", ""),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		PlaceholderPosterURL: getEnv("PLACEHOLDER_POSTER_URL", DefaultPlaceholderPoster),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.AITimeout, err = time.ParseDuration(getEnv("AI_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_TIMEOUT: %w", err)
	}

	cfg.RateLimitWindow, err = time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	cfg.PosterCacheTTL, err = time.ParseDuration(getEnv("POSTER_CACHE_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid POSTER_CACHE_TTL: %w", err)
	}

	cfg.RateLimitRequests, err = strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}

	cfg.PosterCacheSize, err = strconv.Atoi(getEnv("POSTER_CACHE_SIZE", "256"))
	if err != nil {
		return nil, fmt.Errorf("invalid POSTER_CACHE_SIZE: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateForAI checks configuration needed to talk to the AI provider.
func (c *Config) ValidateForAI() error {
	switch c.AIProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER is gemini")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
		}
	default:
		return fmt.Errorf("invalid AI_PROVIDER: %s (must be 'gemini', 'openai' or 'anthropic')", c.AIProvider)
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.ValidateForAI(); err != nil {
		return err
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative")
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	switch c.AIProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// normalizeProvider lower-cases the provider name; blank means gemini.
func normalizeProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProviderGemini
	}
	return name
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
