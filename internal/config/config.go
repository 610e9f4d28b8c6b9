package config

import "github.com/caarlos0/env/v10"

// Config centralizes service configuration.
type Config struct {
	WhatsAppToken     string `env:"WHATSAPP_API_TOKEN,required"`
	PhoneNumberID     string `env:"WHATSAPP_PHONE_NUMBER_ID,required"`
	BusinessAccountID string `env:"WHATSAPP_BUSINESS_ACCOUNT_ID"`
	VerifyToken       string `env:"WEBHOOK_VERIFY_TOKEN,required"`
	AppSecret         string `env:"WHATSAPP_APP_SECRET"`
	APIVersion        string `env:"WHATSAPP_API_VERSION" envDefault:"v18.0"`
	APIBaseURL        string `env:"WHATSAPP_API_BASE_URL" envDefault:"https://graph.facebook.com"`

	DatabaseURL string `env:"DATABASE_URL,required"`

	HTTPHost    string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	MaxMessageLength      int `env:"MAX_MESSAGE_LENGTH" envDefault:"4096"`
	RateLimitMessages     int `env:"RATE_LIMIT_MESSAGES" envDefault:"60"`
	SessionTimeoutSeconds int `env:"SESSION_TIMEOUT_SECONDS" envDefault:"3600"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
