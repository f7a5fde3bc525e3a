package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	// PublicURL is the public bucket domain objects are served from.
	PublicURL string
}

func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != "" && r.PublicURL != ""
}

type N8N struct {
	BaseURL     string
	WebhookPath string
	WebhookID   string
	// WebhookURL overrides BaseURL/WebhookPath/WebhookID when set.
	WebhookURL string
}

// URL is the webhook the application API calls.
func (n N8N) URL() string {
	if n.WebhookURL != "" {
		return n.WebhookURL
	}
	if n.BaseURL == "" || n.WebhookID == "" {
		return ""
	}
	return n.Target(n.WebhookID)
}

// Target is the upstream URL the proxy forwards webhookID to.
func (n N8N) Target(webhookID string) string {
	base := strings.TrimRight(n.BaseURL, "/")
	path := strings.Trim(n.WebhookPath, "/")
	if path == "" {
		return base + "/" + webhookID
	}
	return base + "/" + path + "/" + webhookID
}

type Config struct {
	Port        string
	FrontendURL string
	LogLevel    string

	N8N              N8N
	RequestTimeout   time.Duration
	UploadMaxSize    int64
	WebhookRateLimit float64

	IdeasProvider string
	ImageProvider string

	OpenAIAPIKey        string
	OpenAIModel         string
	GeminiAPIKey        string
	GeminiImageModel    string
	GeminiAnalysisModel string
	OpenRouterAPIKey    string
	OpenRouterModel     string

	RedisURI      string
	JobStaleAfter time.Duration
	R2            R2
}

func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		FrontendURL: getEnv("FRONTEND_URL", "*"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		N8N: N8N{
			BaseURL:     getEnv("N8N_BASE_URL", ""),
			WebhookPath: getEnv("N8N_WEBHOOK_PATH", "webhook-test"),
			WebhookID:   getEnv("N8N_WEBHOOK_ID", ""),
			WebhookURL:  getEnv("N8N_WEBHOOK_URL", ""),
		},
		RequestTimeout:      getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
		UploadMaxSize:       int64(getEnvInt("UPLOAD_MAX_SIZE", 10<<20)),
		WebhookRateLimit:    getEnvFloat("WEBHOOK_RATE_LIMIT", 0),
		IdeasProvider:       strings.ToLower(getEnv("IDEAS_PROVIDER", "n8n")),
		ImageProvider:       strings.ToLower(getEnv("IMAGE_PROVIDER", "n8n")),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		GeminiImageModel:    getEnv("GEMINI_IMAGE_MODEL", ""),
		GeminiAnalysisModel: getEnv("GEMINI_ANALYSIS_MODEL", ""),
		OpenRouterAPIKey:    getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:     getEnv("OPENROUTER_MODEL", ""),
		RedisURI:            getEnv("REDIS_URI", ""),
		JobStaleAfter:       getEnvDuration("JOB_STALE_AFTER", 10*time.Minute),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}
