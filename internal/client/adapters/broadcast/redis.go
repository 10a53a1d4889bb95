// Package broadcast содержит реализацию канала сигналов на основе Redis Pub/Sub.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobtrack/internal/client/config"
	broadcastPort "jobtrack/internal/client/ports/broadcast"
	"jobtrack/pkg/logger"
)

// Константы для логирования.
const (
	LogSignalPublished = "session change signal published"
	LogSignalReceived  = "session change signal received"

	ErrorFailedToPublish   = "failed to publish session change signal"
	ErrorFailedToSubscribe = "failed to subscribe to session change channel"
	ErrorFailedToDecode    = "failed to decode session change signal"
	ErrorFailedToClose     = "failed to close redis connection"
)

// RedisBroadcast реализует интерфейс Broadcast поверх Redis Pub/Sub.
type RedisBroadcast struct {
	client  *redis.Client
	channel string
}

// NewRedisBroadcast создает новый канал сигналов и проверяет соединение.
func NewRedisBroadcast(ctx context.Context, cfg *config.BroadcastConfig) (*RedisBroadcast, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddressString(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.ConnectTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBroadcast{client: client, channel: cfg.Channel}, nil
}

// Publish отправляет сигнал об изменении сессии всем подписчикам.
func (b *RedisBroadcast) Publish(ctx context.Context, sig broadcastPort.Signal) error {
	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToPublish, err)
	}

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToPublish, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToPublish, err)
	}

	logger.Log(ctx).Debug(ctx, LogSignalPublished, zap.String("origin", sig.Origin))
	return nil
}

// Subscribe подписывается на сигналы. Возвращает функцию отмены подписки.
func (b *RedisBroadcast) Subscribe(ctx context.Context, fn func(broadcastPort.Signal)) (func(), error) {
	pubsub := b.client.Subscribe(ctx, b.channel)

	// Подтверждение подписки до возврата, чтобы не потерять ранние сигналы.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%s: %w", ErrorFailedToSubscribe, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var sig broadcastPort.Signal
			if err := json.Unmarshal([]byte(msg.Payload), &sig); err != nil {
				logger.Log(ctx).Warn(ctx, ErrorFailedToDecode, zap.Error(err))
				continue
			}
			logger.Log(ctx).Debug(ctx, LogSignalReceived, zap.String("origin", sig.Origin))
			fn(sig)
		}
	}()

	return func() { _ = pubsub.Close() }, nil
}

// Close закрывает соединение с Redis.
func (b *RedisBroadcast) Close() error {
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToClose, err)
	}
	return nil
}
