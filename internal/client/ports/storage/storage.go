// Package storage определяет интерфейсы для долговременного хранения сессии.
package storage

import (
	"context"
	"time"
)

// Record представляет сериализуемое состояние сессии в хранилище профиля.
type Record struct {
	AccessToken   string    `json:"access_token"`
	IdentityToken string    `json:"identity_token,omitempty"`
	RefreshToken  string    `json:"refresh_token,omitempty"`
	TokenType     string    `json:"token_type"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// TokenStorage определяет интерфейс для хранилища записи сессии.
// Load возвращает (nil, nil), когда запись отсутствует.
type TokenStorage interface {
	Load(ctx context.Context) (*Record, error)

	Save(ctx context.Context, record *Record) error

	Clear(ctx context.Context) error
}
