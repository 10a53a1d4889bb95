// Package stubapi содержит заглушку backend для локальной разработки
// клиента: авторизация с ротацией refresh token и доска откликов в памяти.
package stubapi

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"jobtrack/pkg/logger"
)

// Константы ошибок и сообщений для конфигурации.
const (
	LogLoadingConfig    = "Loading stub API configuration"
	LogConfigLoaded     = "Configuration loaded successfully"
	ErrFailedLoadConfig = "Failed to load configuration"
)

// Config представляет полную конфигурацию заглушки backend.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// HTTPConfig представляет конфигурацию HTTP сервера.
type HTTPConfig struct {
	Host         string        `yaml:"host" env:"STUBAPI_HTTP_HOST" env-default:"0.0.0.0"`
	Port         int           `yaml:"port" env:"STUBAPI_HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"STUBAPI_HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"STUBAPI_HTTP_WRITE_TIMEOUT" env-default:"10s"`
}

// AuthConfig представляет конфигурацию выпуска токенов.
type AuthConfig struct {
	Secret     string        `yaml:"secret" env:"STUBAPI_AUTH_SECRET" env-default:"stub-secret-change-me"`
	AccessTTL  time.Duration `yaml:"access_ttl" env:"STUBAPI_AUTH_ACCESS_TTL" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"STUBAPI_AUTH_REFRESH_TTL" env-default:"720h"`
}

// LoggingConfig представляет конфигурацию логирования.
type LoggingConfig struct {
	Level string `yaml:"level" env:"STUBAPI_LOGGER_LEVEL" env-default:"info"`
	Mode  string `yaml:"mode" env:"STUBAPI_LOGGER_MODE" env-default:"development"`
}

// ShutdownConfig представляет конфигурацию корректного завершения.
type ShutdownConfig struct {
	Timeout int `yaml:"timeout" env:"STUBAPI_SHUTDOWN_TIMEOUT" env-default:"5"`
}

// GetAddress возвращает адрес HTTP сервера.
func (c *HTTPConfig) GetAddress() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// GetTimeout возвращает timeout завершения как Duration.
func (c *ShutdownConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetEnvironment возвращает режим работы логгера.
func (c *LoggingConfig) GetEnvironment() logger.Environment {
	if c.Mode == "development" {
		return logger.Development
	}
	return logger.Production
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig(ctx context.Context) (*Config, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogLoadingConfig)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Error(ctx, ErrFailedLoadConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.Duration("access_ttl", cfg.Auth.AccessTTL),
		zap.String("log_level", cfg.Logging.Level))

	return &cfg, nil
}
