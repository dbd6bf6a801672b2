package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"deck-server/pkg/logger"
)

// Config содержит конфигурацию сервиса генерации презентаций
type Config struct {
	Env       string `env:"APP_ENV" env-default:"development"`
	Logger    logger.Config
	Server    ServerConfig
	Database  DatabaseConfig  `env-prefix:"DB_"`
	Redis     RedisConfig     `env-prefix:"REDIS_"`
	RabbitMQ  RabbitMQConfig  `env-prefix:"RABBITMQ_"`
	AI        AIConfig        `env-prefix:"AI_"`
	Images    ImagesConfig    `env-prefix:"IMAGE_"`
	Export    ExportConfig    `env-prefix:"EXPORT_"`
	Pipeline  PipelineConfig  `env-prefix:"PIPELINE_"`
	Webhook   WebhookConfig   `env-prefix:"WEBHOOK_"`
	Templates TemplatesConfig `env-prefix:"TEMPLATES_"`
	RateLimit RateLimitConfig `env-prefix:"RATE_LIMIT_"`
	Auth      AuthConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port               string        `env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout        time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout       time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"0s"` // генерация может идти минутами
	ShutdownTimeout    time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	StaticDir          string        `env:"STATIC_DIR" env-default:"./static"`
}

// DatabaseConfig содержит настройки PostgreSQL
type DatabaseConfig struct {
	Host        string        `env:"HOST" env-default:"localhost"`
	Port        string        `env:"PORT" env-default:"5432"`
	User        string        `env:"USER" env-default:"postgres"`
	Password    string        `env:"PASSWORD"`
	Name        string        `env:"NAME" env-default:"deck_db"`
	SSLMode     string        `env:"SSL_MODE" env-default:"disable"`
	MaxConns    int32         `env:"MAX_CONNECTIONS" env-default:"10"`
	MaxConnIdle time.Duration `env:"MAX_CONN_IDLE" env-default:"5m"`
}

// RedisConfig - хранилище статусов задач
type RedisConfig struct {
	Addr     string        `env:"ADDR" env-default:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" env-default:"0"`
	JobTTL   time.Duration `env:"JOB_TTL" env-default:"24h"`
}

// RabbitMQConfig - шина событий генерации. Пустой URL отключает публикацию.
type RabbitMQConfig struct {
	URL            string `env:"URL"`
	EventsExchange string `env:"EVENTS_EXCHANGE" env-default:"presentation_events"`
}

// AIConfig содержит настройки текстового LLM провайдера
type AIConfig struct {
	ClientType  string        `env:"CLIENT_TYPE" env-default:"openai"` // openai | ollama
	BaseURL     string        `env:"BASE_URL" env-default:"https://api.openai.com/v1"`
	APIKey      string        `env:"API_KEY"`
	Model       string        `env:"MODEL" env-default:"gpt-4o-mini"`
	Timeout     time.Duration `env:"TIMEOUT" env-default:"120s"`
	Temperature float64       `env:"TEMPERATURE" env-default:"0.7"`
	MaxTokens   int           `env:"MAX_TOKENS" env-default:"4000"`
}

// ImagesConfig содержит настройки генерации изображений.
// Пустой BaseURL означает, что провайдера нет и используются плейсхолдеры.
type ImagesConfig struct {
	BaseURL       string        `env:"PROVIDER_URL"`
	Timeout       time.Duration `env:"PROVIDER_TIMEOUT" env-default:"120s"`
	RatePerSecond float64       `env:"RATE_PER_SECOND" env-default:"2"`
	Burst         int           `env:"BURST" env-default:"4"`
	SavePath      string        `env:"SAVE_PATH" env-default:"./static/generated"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL" env-default:"/static/generated"`
	StyleSuffix   string        `env:"PROMPT_STYLE_SUFFIX"`
}

// ExportConfig содержит настройки экспорта
type ExportConfig struct {
	RendererURL   string        `env:"PPTX_RENDERER_URL"`
	Timeout       time.Duration `env:"TIMEOUT" env-default:"60s"`
	OutputDir     string        `env:"OUTPUT_DIR" env-default:"./static/exports"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL" env-default:"/static/exports"`
}

// PipelineConfig содержит параметры конвейера генерации
type PipelineConfig struct {
	BatchSize     int           `env:"BATCH_SIZE" env-default:"10"`
	MaxActiveJobs int           `env:"MAX_ACTIVE_JOBS" env-default:"20"`
	JobRetention  time.Duration `env:"JOB_RETENTION" env-default:"6h"`
}

// WebhookConfig содержит настройки доставки вебхуков
type WebhookConfig struct {
	Timeout time.Duration `env:"TIMEOUT" env-default:"10s"`
}

// TemplatesConfig - путь к каталогу шаблонов
type TemplatesConfig struct {
	CatalogPath string `env:"CATALOG_PATH" env-default:"./configs/templates.yaml"`
}

// RateLimitConfig ограничивает запуск генераций на пользователя. 0 отключает лимит.
type RateLimitConfig struct {
	PerMinute uint `env:"PER_MINUTE" env-default:"10"`
}

// AuthConfig содержит секрет для проверки JWT пользователей
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET" env-required:"true"`
}

// Load загружает конфигурацию из .env файла и переменных окружения.
func Load() (*Config, error) {
	// .env опционален: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.AI.ClientType) {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unsupported AI_CLIENT_TYPE %q", c.AI.ClientType)
	}
	if c.Pipeline.BatchSize <= 0 {
		return fmt.Errorf("PIPELINE_BATCH_SIZE must be positive, got %d", c.Pipeline.BatchSize)
	}
	return nil
}

// IsProduction возвращает true для боевого окружения.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// MaskedDSN возвращает DSN с замаскированным паролем для логов
func (d DatabaseConfig) MaskedDSN() string {
	masked := d
	if masked.Password != "" {
		masked.Password = "********"
	}
	return masked.DSN()
}
