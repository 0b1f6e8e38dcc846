package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Telegram TelegramConfig
	Template TemplateConfig
	OCR      OCRConfig
	NLP      NLPConfig
	Search   SearchConfig
	Session  SessionConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port         string `validate:"required,numeric"`
	Environment  string `validate:"oneof=development production test"`
	LogFilePath  string `validate:"required"`
	NatsURL      string
	UpdatesTopic string `validate:"required"`
}

type TelegramConfig struct {
	Token  string `validate:"required"`
	APIURL string `validate:"required,url"`
}

type TemplateConfig struct {
	DefaultPath string `validate:"required"`
	// UploadDir holds per-chat template overrides.
	UploadDir string `validate:"required"`
}

type OCRConfig struct {
	Enabled       bool
	TesseractPath string
	// Available is filled by the startup probe, not read from the environment.
	Available bool
}

type NLPConfig struct {
	DataDir string
}

type SearchConfig struct {
	Endpoint       string `validate:"required,url"`
	Results        int    `validate:"min=1,max=10"`
	MaxSourceChars int    `validate:"min=1000"`
	PageCacheSize  int    `validate:"min=1"`
}

type SessionConfig struct {
	Store    string `validate:"oneof=memory redis"`
	RedisURL string `validate:"required_if=Store redis"`
	TTL      time.Duration
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:         getEnv("PORT", "5000"),
			Environment:  getEnv("GO_ENV", "development"),
			LogFilePath:  getEnv("LOG_FILE_PATH", "logs/app.log"),
			NatsURL:      getEnv("NATS_URL", ""),
			UpdatesTopic: getEnv("UPDATES_TOPIC", "telegram.updates"),
		},
		Telegram: TelegramConfig{
			Token:  getEnv("TELEGRAM_TOKEN", ""),
			APIURL: getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		},
		Template: TemplateConfig{
			DefaultPath: getEnv("DEFAULT_TEMPLATE_PATH", "./Sample Lesson Plan.docx"),
			UploadDir:   getEnv("TEMPLATE_DIR", "./templates"),
		},
		OCR: OCRConfig{
			Enabled:       getEnvAsBool("OCR_ENABLED", true),
			TesseractPath: getEnv("TESSERACT_PATH", "tesseract"),
		},
		NLP: NLPConfig{
			DataDir: getEnv("NLP_DATA_DIR", ""),
		},
		Search: SearchConfig{
			Endpoint:       getEnv("SEARCH_URL", "https://html.duckduckgo.com/html/"),
			Results:        getEnvAsInt("SEARCH_RESULTS", 3),
			MaxSourceChars: getEnvAsInt("MAX_SOURCE_CHARS", 20000),
			PageCacheSize:  getEnvAsInt("PAGE_CACHE_SIZE", 256),
		},
		Session: SessionConfig{
			Store:    getEnv("SESSION_STORE", "memory"),
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      getEnvAsDuration("SESSION_TTL", 0),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

var validate = validator.New()

// Validate rejects a configuration the bot cannot start with.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
