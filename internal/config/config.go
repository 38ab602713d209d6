package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENV" env-default:"development"`
	DBDSN       string `env:"DB_DSN" env-required:"true"`

	HTTPServer HTTPServer
	Redis      Redis
	Auth       Auth
	Telegram   Telegram
	Audit      Audit
}

type HTTPServer struct {
	Address         string        `env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type Auth struct {
	JWTSecret        string        `env:"AUTH_JWT_SECRET" env-required:"true"`
	SessionTTL       time.Duration `env:"AUTH_SESSION_TTL" env-default:"12h"`
	AllowAdminSignup bool          `env:"AUTH_ALLOW_ADMIN_SIGNUP" env-default:"false"`
}

// Telegram канал уведомлений; пустой токен отключает уведомления
type Telegram struct {
	Token  string `env:"TELEGRAM_TOKEN"`
	ChatID int64  `env:"TELEGRAM_CHAT_ID"`
}

type Audit struct {
	Retention time.Duration `env:"AUDIT_RETENTION" env-default:"720h"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}

	// Проверяем обязательные поля: cleanenv пропускает пустые, но заданные переменные
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required but not set")
	}

	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return &cfg, nil
}

// NotificationsEnabled включены ли уведомления в Telegram
func (c *Config) NotificationsEnabled() bool {
	return c.Telegram.Token != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
