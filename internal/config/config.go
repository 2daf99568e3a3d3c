package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/LifeLane/Shadow-Console-sub000/internal/domain"
)

// Config содержит все настройки приложения
type Config struct {
	UserID   string
	Storage  StorageConfig
	Database DatabaseConfig
	Oracle   OracleConfig
	AI       AIConfig
	Lifecycle LifecycleConfig
	Telegram TelegramConfig
	RewardPolicyPath string
	SeedPath         string
	APIPort          int
	LogLevel         string
}

type StorageConfig struct {
	Driver  string // "json" или "postgres"
	DataDir string // каталог JSON-коллекций
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type OracleConfig struct {
	Provider     string // "binance" или "bybit"
	Fallback     bool   // резервный провайдер при недоступности основного
	BybitBaseURL string
	Timeout      time.Duration
	RateLimit    float64 // запросов в секунду
}

type AIConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

type LifecycleConfig struct {
	SettleDelay  time.Duration // пауза "размещения ордера" перед трекингом
	PollInterval time.Duration // период опроса цены
}

type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// Load загружает конфигурацию из .env файла
func Load() (*Config, error) {
	// Загружаем .env файл (если есть)
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	chatID, err := strconv.ParseInt(getEnv("TELEGRAM_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxOpenConns, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdleConns, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	oracleTimeout, err := time.ParseDuration(getEnv("ORACLE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ORACLE_TIMEOUT: %w", err)
	}

	oracleRate, err := strconv.ParseFloat(getEnv("ORACLE_RATE_LIMIT", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ORACLE_RATE_LIMIT: %w", err)
	}

	aiTimeout, err := time.ParseDuration(getEnv("AI_TIMEOUT", "45s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_TIMEOUT: %w", err)
	}

	settleDelay, err := time.ParseDuration(getEnv("SETTLE_DELAY", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SETTLE_DELAY: %w", err)
	}

	pollInterval, err := time.ParseDuration(getEnv("POLL_INTERVAL", "3s"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}

	apiPort, err := strconv.Atoi(getEnv("API_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_PORT: %w", err)
	}

	config := &Config{
		UserID: getEnv("CONSOLE_USER_ID", "operative-000"),
		Storage: StorageConfig{
			Driver:  getEnv("STORAGE_DRIVER", domain.StorageJSON),
			DataDir: getEnv("DATA_DIR", "./data"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            dbPort,
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "shadow_console"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		Oracle: OracleConfig{
			Provider:     getEnv("ORACLE_PROVIDER", domain.OracleBinance),
			Fallback:     getEnv("ORACLE_FALLBACK", "true") == "true",
			BybitBaseURL: getEnv("BYBIT_BASE_URL", "https://api.bybit.com"),
			Timeout:      oracleTimeout,
			RateLimit:    oracleRate,
		},
		AI: AIConfig{
			Provider: getEnv("AI_PROVIDER", "gemini"),
			APIKey:   getEnv("AI_API_KEY", ""),
			BaseURL:  getEnv("AI_BASE_URL", ""),
			Model:    getEnv("AI_MODEL", "gemini-2.0-flash"),
			Timeout:  aiTimeout,
		},
		Lifecycle: LifecycleConfig{
			SettleDelay:  settleDelay,
			PollInterval: pollInterval,
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   chatID,
		},
		RewardPolicyPath: getEnv("REWARD_POLICY_PATH", ""),
		SeedPath:         getEnv("SEED_PATH", ""),
		APIPort:          apiPort,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate проверяет обязательные поля конфигурации
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("AI_API_KEY is required")
	}
	if c.AI.BaseURL == "" {
		return fmt.Errorf("AI_BASE_URL is required")
	}
	if c.Storage.Driver != domain.StorageJSON && c.Storage.Driver != domain.StoragePostgres {
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q", domain.StorageJSON, domain.StoragePostgres)
	}
	if c.Storage.Driver == domain.StoragePostgres && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required for postgres storage")
	}
	if c.Oracle.Provider != domain.OracleBinance && c.Oracle.Provider != domain.OracleBybit {
		return fmt.Errorf("ORACLE_PROVIDER must be %q or %q", domain.OracleBinance, domain.OracleBybit)
	}
	if c.Lifecycle.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
