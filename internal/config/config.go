package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by SAHAI_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("SAHAI_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL is optional; without it the service runs on the embedded
// catalog and in-memory application records.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

// LLMProvider returns the configured LLM provider.
// Defaults to "gemini" if not set.
// Valid values: gemini, openai, anthropic, cerebras, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "gemini"
	}
	return p
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "openai":
		return OpenAIAPIKey()
	case "cerebras":
		return CerebrasAPIKey()
	case "mock":
		return ""
	default:
		return GeminiAPIKey()
	}
}

// LLMModel overrides the provider's default model when set.
func LLMModel() string {
	return os.Getenv("LLM_MODEL")
}

func LLMTemperature() float32 {
	t, err := strconv.ParseFloat(os.Getenv("LLM_TEMPERATURE"), 32)
	if err != nil || t < 0 {
		return 0.7
	}
	return float32(t)
}

func LLMMaxTokens() int {
	return intOr("LLM_MAX_TOKENS", 1000)
}

func LLMTimeout() time.Duration {
	return durationOr("LLM_TIMEOUT", 20*time.Second)
}

// CatalogSource selects where the catalog is loaded from:
// "embedded" (default), "file" (CATALOG_PATH) or "postgres".
func CatalogSource() string {
	s := os.Getenv("CATALOG_SOURCE")
	if s == "" {
		if CatalogPath() != "" {
			return "file"
		}
		return "embedded"
	}
	return s
}

func CatalogPath() string {
	return os.Getenv("CATALOG_PATH")
}

// SessionTTL is how long a session may stay idle before it is reclaimed.
func SessionTTL() time.Duration {
	return durationOr("SESSION_TTL", 30*time.Minute)
}

func SessionSweepInterval() time.Duration {
	return durationOr("SESSION_SWEEP_INTERVAL", time.Minute)
}

func HistoryLimit() int {
	return intOr("HISTORY_LIMIT", 20)
}

func MaxRetries() int {
	return intOr("MAX_RETRIES", 3)
}

// MinInputConfidence is the transcript confidence below which the user is
// asked to confirm what was heard.
func MinInputConfidence() float64 {
	c, err := strconv.ParseFloat(os.Getenv("MIN_INPUT_CONFIDENCE"), 64)
	if err != nil || c < 0 || c > 1 {
		return 0.4
	}
	return c
}

// AgeTolerance is the number of years a restated age may drift without
// raising a contradiction.
func AgeTolerance() int {
	return intOr("AGE_TOLERANCE", 1)
}

// IncomeTolerance is the absolute rupee difference below which a restated
// income is treated as an update.
func IncomeTolerance() int {
	return intOr("INCOME_TOLERANCE", 25000)
}

// DefaultLocale is the reply language, "hi" or "en".
func DefaultLocale() string {
	l := os.Getenv("DEFAULT_LOCALE")
	if l == "" {
		return "hi"
	}
	return l
}

// APIKey enables bearer authentication on /v1 when set.
func APIKey() string {
	return os.Getenv("API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 10 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 10
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func intOr(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func durationOr(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
