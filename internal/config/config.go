package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by NEURODIAG_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("NEURODIAG_ENV")
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

// DatabaseURL returns the Postgres connection string for transcript storage.
// Empty means transcripts are disabled.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// KBPath returns the path of the knowledge base file.
func KBPath() string {
	p := os.Getenv("KB_PATH")
	if p == "" {
		return "knowledge_base.yaml"
	}
	return p
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

// LLMProvider returns the configured LLM provider.
// Defaults to "gemini" if not set.
// Valid values: gemini, openai, anthropic, mock
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
	case "mock":
		return ""
	default:
		return GeminiAPIKey()
	}
}

// ForwardMaxIterations bounds the forward-chaining fixpoint loop.
// Defaults to 64 if not set.
func ForwardMaxIterations() int {
	n, err := strconv.Atoi(os.Getenv("FORWARD_MAX_ITERATIONS"))
	if err != nil || n <= 0 {
		return 64
	}
	return n
}

// InferenceTimeout caps one inference run inside a conversational turn.
// Defaults to 5s if not set.
func InferenceTimeout() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("INFERENCE_TIMEOUT_MS"))
	if err != nil || ms <= 0 {
		return 5 * time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

// SessionTTL returns how long an idle session survives before eviction.
// Defaults to 30 minutes if not set.
func SessionTTL() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("SESSION_TTL_MINUTES"))
	if err != nil || minutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(minutes) * time.Minute
}

// SessionCapacity bounds the number of live sessions.
// Defaults to 1024 if not set.
func SessionCapacity() int {
	capacity, err := strconv.Atoi(os.Getenv("SESSION_CAPACITY"))
	if err != nil || capacity <= 0 {
		return 1024
	}
	return capacity
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
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
