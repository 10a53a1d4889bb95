package config

import (
	"strings"
	"time"
)

// APIConfig представляет конфигурацию доступа к backend API.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url" env:"CLIENT_API_BASE_URL" env-default:"http://localhost:8080/api/v1"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CLIENT_API_REQUEST_TIMEOUT" env-default:"15s"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout" env:"CLIENT_API_REFRESH_TIMEOUT" env-default:"10s"`
}

// GetBaseURL возвращает базовый URL без завершающего слеша.
func (c *APIConfig) GetBaseURL() string {
	return strings.TrimRight(c.BaseURL, "/")
}
