package config

import (
	"strconv"
	"time"
)

// BroadcastConfig представляет конфигурацию канала сигналов об изменении сессии.
type BroadcastConfig struct {
	Enabled        bool          `yaml:"enabled" env:"CLIENT_BROADCAST_ENABLED" env-default:"false"`
	Host           string        `yaml:"host" env:"CLIENT_BROADCAST_REDIS_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"CLIENT_BROADCAST_REDIS_PORT" env-default:"6379"`
	Password       string        `yaml:"password" env:"CLIENT_BROADCAST_REDIS_PASSWORD" env-default:""`
	DB             int           `yaml:"db" env:"CLIENT_BROADCAST_REDIS_DB" env-default:"0"`
	Channel        string        `yaml:"channel" env:"CLIENT_BROADCAST_CHANNEL" env-default:"jobtrack:session:changed"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CLIENT_BROADCAST_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"CLIENT_BROADCAST_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"CLIENT_BROADCAST_WRITE_TIMEOUT" env-default:"3s"`
}

// GetAddressString возвращает адрес Redis строкой.
func (c *BroadcastConfig) GetAddressString() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
