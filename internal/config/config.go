package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type CaptionProvider string

const (
	ProviderOpenAI CaptionProvider = "openai"
	ProviderYandex CaptionProvider = "yandex"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`

	// Web
	Port      string `env:"PORT" envDefault:"10000"`
	SiteURL   string `env:"SITE_URL" envDefault:"http://localhost:10000"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"cooknet_secret"`

	// Webhook mode: when enabled the bot registers SITE_URL as its webhook
	// target and consumes updates from the web server instead of long polling.
	WebhookEnabled bool `env:"WEBHOOK_ENABLED"`

	// Captioning
	CaptionProvider  CaptionProvider `env:"CAPTION_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string          `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string          `env:"OPENAI_BASE_URL"`
	OpenAIModel      string          `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string          `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string          `env:"YANDEX_FOLDER_ID"`
	CaptionTimeout   time.Duration   `env:"CAPTION_TIMEOUT" envDefault:"15s"`

	// Storage
	DBPath string `env:"DB_PATH" envDefault:"data/cooknet.db"`

	// Anti-spam
	ChatCooldown   time.Duration `env:"CHAT_COOLDOWN" envDefault:"3s"`
	WebCooldown    time.Duration `env:"WEB_COOLDOWN" envDefault:"2s"`
	SessionTimeout time.Duration `env:"SESSION_TIMEOUT" envDefault:"5m"`

	// Challenge answer required for web comments and chat posts.
	ChallengeAnswer string `env:"CHALLENGE_ANSWER" envDefault:"5"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.CaptionProvider != ProviderOpenAI && cfg.CaptionProvider != ProviderYandex {
		return nil, fmt.Errorf("unknown caption provider: %s", cfg.CaptionProvider)
	}
	return cfg, nil
}
