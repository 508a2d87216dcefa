package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	StoragePath    string
	StorageBaseURL string

	QwenAPIKey  string
	QwenModel   string
	QwenBaseURL string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	VideoAPIKey  string
	VideoBaseURL string

	DefaultLocale string
	CORSOrigins   []string

	HTTPReadTimeout       time.Duration
	HTTPReadHeaderTimeout time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration
	RateLimitPerMin       int

	MaxRetries           int
	InitialDelay         time.Duration
	BackoffFactor        float64
	RetryableStatusCodes []int
	TaskPollInterval     time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: os.Getenv("STORAGE_BASE_URL"),

		QwenAPIKey:  os.Getenv("QWEN_API_KEY"),
		QwenModel:   getEnv("QWEN_MODEL", "qwen-image-plus"),
		QwenBaseURL: getEnv("QWEN_BASE_URL", "https://dashscope-intl.aliyuncs.com/api/v1"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		VideoAPIKey:  os.Getenv("VIDEO_API_KEY"),
		VideoBaseURL: getEnv("VIDEO_BASE_URL", "https://api.video.example.com/v1"),

		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		CORSOrigins:   getEnvList("CORS_ORIGINS", nil),

		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPReadHeaderTimeout: time.Second * time.Duration(getEnvInt("HTTP_READ_HEADER_TIMEOUT_SECONDS", 5)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:       getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		MaxRetries:           getEnvInt("MAX_RETRIES", 3),
		InitialDelay:         time.Millisecond * time.Duration(getEnvInt("INITIAL_DELAY_MS", 1000)),
		BackoffFactor:        getEnvFloat("BACKOFF_FACTOR", 2.0),
		RetryableStatusCodes: getEnvIntList("RETRYABLE_STATUS_CODES", nil),
		TaskPollInterval:     time.Second * time.Duration(getEnvInt("TASK_POLL_INTERVAL_SECONDS", 2)),
	}

	if cfg.StorageBaseURL == "" {
		cfg.StorageBaseURL = fmt.Sprintf("http://localhost:%s/static", cfg.Port)
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("MAX_RETRIES must not be negative")
	}
	if cfg.BackoffFactor < 1 {
		return nil, fmt.Errorf("BACKOFF_FACTOR must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvIntList(key string, fallback []int) []int {
	var out []int
	for _, part := range getEnvList(key, nil) {
		if i, err := strconv.Atoi(part); err == nil {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
