package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	AITimeout        time.Duration
	QuestionCacheLen int
	QuestionCacheTTL time.Duration
	StreakTimezone   string
	DueItemLimit     int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "file:speakcoach.db"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		OpenAIAPIKey:     envOr("OPENAI_API_KEY", ""),
		OpenAIModel:      envOr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AITimeout:        envDurOr("AI_TIMEOUT", 60*time.Second),
		QuestionCacheLen: envIntOr("QUESTION_CACHE_SIZE", 512),
		QuestionCacheTTL: envDurOr("QUESTION_CACHE_TTL", 30*time.Minute),
		StreakTimezone:   envOr("STREAK_TIMEZONE", "Asia/Tokyo"),
		DueItemLimit:     envIntOr("DUE_ITEM_LIMIT", 10),
	}
}

// Validate checks the configuration for values the server cannot start with.
// All problems are reported at once so operators can fix them in a single pass.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.AITimeout <= 0 {
		problems = append(problems, "AI_TIMEOUT must be positive")
	}
	if c.QuestionCacheLen <= 0 {
		problems = append(problems, "QUESTION_CACHE_SIZE must be positive")
	}
	if c.QuestionCacheTTL <= 0 {
		problems = append(problems, "QUESTION_CACHE_TTL must be positive")
	}
	if c.DueItemLimit <= 0 {
		problems = append(problems, "DUE_ITEM_LIMIT must be positive")
	}
	if _, err := time.LoadLocation(c.StreakTimezone); err != nil {
		problems = append(problems, fmt.Sprintf("STREAK_TIMEZONE %q is not a valid IANA timezone", c.StreakTimezone))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
