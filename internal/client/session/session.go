// Package session содержит состояние авторизации клиента: сущность сессии,
// её хранилище и координатор обновления токенов.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ошибки сессии.
var (
	ErrEmptyAccessToken = errors.New("session requires a non-empty access token")
	ErrUnknownExpiry    = errors.New("token lifetime is missing and not present in token claims")
)

// DefaultTokenType - схема авторизации по умолчанию.
const DefaultTokenType = "Bearer"

// Session представляет единственную активную сессию клиента.
// Отсутствие сессии выражается как nil, а не как пустая структура.
type Session struct {
	AccessToken   string
	IdentityToken string
	RefreshToken  string
	TokenType     string
	ExpiresAt     time.Time
}

// TokenGrant содержит токены в том виде, в котором их возвращает сервер.
// ExpiresIn - срок жизни access token в секундах.
type TokenGrant struct {
	AccessToken   string
	IdentityToken string
	RefreshToken  string
	TokenType     string
	ExpiresIn     int64
}

// expiryFromToken извлекает срок действия из claims access token без
// проверки подписи. Используется, когда сервер не сообщил expires_in.
func expiryFromToken(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
