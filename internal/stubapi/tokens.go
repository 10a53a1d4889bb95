package stubapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ошибки токенов.
var (
	ErrInvalidAccessToken = errors.New("invalid access token")
)

// TokenService выпускает и проверяет JWT access token.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
}

// NewTokenService создает сервис токенов.
func NewTokenService(cfg *AuthConfig) *TokenService {
	return &TokenService{
		secret:    []byte(cfg.Secret),
		accessTTL: cfg.AccessTTL,
	}
}

// AccessTTLSeconds возвращает срок жизни access token в секундах,
// сообщаемый клиенту как expires_in.
func (t *TokenService) AccessTTLSeconds() int64 {
	return int64(t.accessTTL.Seconds())
}

// GenerateAccessToken выпускает подписанный access token.
func (t *TokenService) GenerateAccessToken(userID, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(t.accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken проверяет подпись и срок действия access token
// и возвращает идентификатор пользователя.
func (t *TokenService) ParseAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidAccessToken, token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %w", ErrInvalidAccessToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidAccessToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidAccessToken
	}
	return sub, nil
}
