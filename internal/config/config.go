package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	// Telegram
	TelegramToken string
	AllowedUserID int64 // 0 means no restriction

	// Webhook mode (long polling when empty)
	WebhookURL string
	Port       string

	// Generation backends
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	FallbackAPIKey  string
	FallbackModel   string
	FallbackBaseURL string

	// X (Twitter) credentials, OAuth 1.0a user context
	TwitterAPIKey            string
	TwitterAPISecret         string
	TwitterAccessToken       string
	TwitterAccessTokenSecret string

	// Scheduler
	TickPeriod     time.Duration
	StateFile      string
	MediaDir       string
	PublishTimeout time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		AllowedUserID: getEnvInt64("ALLOWED_TELEGRAM_USER_ID", 0),

		WebhookURL: getEnv("WEBHOOK_URL", ""),
		Port:       getEnv("PORT", "8443"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		FallbackAPIKey:  getEnv("GEMINI_API_KEY", ""),
		FallbackModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		FallbackBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),

		TwitterAPIKey:            getEnv("TWITTER_API_KEY", ""),
		TwitterAPISecret:         getEnv("TWITTER_API_SECRET", ""),
		TwitterAccessToken:       getEnv("TWITTER_ACCESS_TOKEN", ""),
		TwitterAccessTokenSecret: getEnv("TWITTER_ACCESS_TOKEN_SECRET", ""),

		TickPeriod:     time.Duration(getEnvInt("TICK_PERIOD_MINUTES", 30)) * time.Minute,
		StateFile:      getEnv("STATE_FILE", "automation_state.json"),
		MediaDir:       getEnv("MEDIA_DIR", "media"),
		PublishTimeout: time.Duration(getEnvInt("PUBLISH_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func (c *Config) Validate(log *zap.Logger) {
	if c.TelegramToken == "" {
		log.Warn("TELEGRAM_BOT_TOKEN is not set")
	}
	if c.OpenAIAPIKey == "" && c.FallbackAPIKey == "" {
		log.Warn("no generation backend configured, drafting will fail")
	}
	if c.TwitterAPIKey == "" || c.TwitterAPISecret == "" ||
		c.TwitterAccessToken == "" || c.TwitterAccessTokenSecret == "" {
		log.Warn("Twitter credentials incomplete, publishing will fail")
	}
	if c.AllowedUserID == 0 {
		log.Warn("ALLOWED_TELEGRAM_USER_ID is not set, bot will answer anyone")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvInt64(key string, fallback int64) int64 {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
