package config

import (
	"path/filepath"
	"time"
)

// SessionConfig представляет конфигурацию хранения и устаревания сессии.
type SessionConfig struct {
	ProfileDir string `yaml:"profile_dir" env:"CLIENT_PROFILE_DIR" env-default:".jobtrack"`
	// TokenSkew вычитается из срока жизни токена в момент его получения.
	TokenSkew time.Duration `yaml:"token_skew" env:"CLIENT_TOKEN_SKEW" env-default:"60s"`
	// ExpirySkew - запас, с которым токен считается устаревающим перед запросом.
	ExpirySkew time.Duration `yaml:"expiry_skew" env:"CLIENT_EXPIRY_SKEW" env-default:"30s"`
}

// Имя файла записи сессии внутри каталога профиля.
const sessionFileName = "session.json"

// GetStoragePath возвращает путь к файлу записи сессии.
func (c *SessionConfig) GetStoragePath() string {
	return filepath.Join(c.ProfileDir, sessionFileName)
}
