package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"jobtrack/pkg/logger"
)

// Ошибки координатора обновления.
var (
	ErrNoRefreshToken   = errors.New("no refresh token available")
	ErrRefreshRejected  = errors.New("refresh request rejected by server")
	ErrRefreshTransport = errors.New("refresh request failed")
	ErrRefreshMalformed = errors.New("malformed refresh response")
)

// Константы для логирования.
const (
	LogRefreshStarted   = "token refresh started"
	LogRefreshSucceeded = "token refresh succeeded"

	ErrorRefreshFailed = "token refresh failed, session cleared"
)

// Ключ singleflight: одновременно выполняется не более одного обмена.
const refreshKey = "refresh"

// refreshRequest - тело запроса к endpoint обновления токенов.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshResponse - успешный ответ endpoint обновления токенов.
type refreshResponse struct {
	AccessToken   string `json:"access_token"`
	IdentityToken string `json:"identity_token,omitempty"`
	RefreshToken  string `json:"refresh_token,omitempty"`
	TokenType     string `json:"token_type,omitempty"`
	ExpiresIn     int64  `json:"expires_in"`
}

// Refresher обменивает refresh token на новую пару токенов.
// Конкурентные вызовы сворачиваются в один сетевой обмен, результат
// которого наблюдают все ожидающие. Любой сбой обмена терминален:
// сессия очищается, повторных попыток координатор не делает.
type Refresher struct {
	sessions   *Manager
	httpClient *http.Client
	refreshURL string
	group      singleflight.Group
}

// NewRefresher создает координатор обновления токенов.
func NewRefresher(sessions *Manager, refreshURL string, timeout time.Duration) *Refresher {
	return &Refresher{
		sessions:   sessions,
		httpClient: &http.Client{Timeout: timeout},
		refreshURL: refreshURL,
	}
}

// Refresh возвращает обновленную сессию. При терминальном сбое сессия
// уже очищена, возвращается (nil, err). Все конкурентные вызовы
// получают идентичный результат.
func (r *Refresher) Refresh(ctx context.Context) (*Session, error) {
	v, err, _ := r.group.Do(refreshKey, func() (interface{}, error) {
		return r.exchange(ctx)
	})
	if err != nil {
		return nil, err
	}
	sess, _ := v.(*Session)
	return sess, nil
}

// exchange выполняет один сетевой обмен refresh token на новую сессию.
func (r *Refresher) exchange(ctx context.Context) (*Session, error) {
	log := logger.Log(ctx)

	current := r.sessions.Session()
	if current == nil || current.RefreshToken == "" {
		// Обновление невозможно, сетевой вызов не выполняется.
		_ = r.sessions.Clear(ctx)
		return nil, ErrNoRefreshToken
	}

	log.Debug(ctx, LogRefreshStarted)

	body, err := json.Marshal(refreshRequest{RefreshToken: current.RefreshToken})
	if err != nil {
		return nil, r.fail(ctx, fmt.Errorf("%w: %w", ErrRefreshTransport, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.refreshURL, bytes.NewReader(body))
	if err != nil {
		return nil, r.fail(ctx, fmt.Errorf("%w: %w", ErrRefreshTransport, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, r.fail(ctx, fmt.Errorf("%w: %w", ErrRefreshTransport, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, r.fail(ctx, fmt.Errorf("%w: HTTP %d", ErrRefreshRejected, resp.StatusCode))
	}

	var grant refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, r.fail(ctx, fmt.Errorf("%w: %w", ErrRefreshMalformed, err))
	}
	if grant.AccessToken == "" {
		return nil, r.fail(ctx, fmt.Errorf("%w: empty access token", ErrRefreshMalformed))
	}

	next := TokenGrant{
		AccessToken:   grant.AccessToken,
		IdentityToken: grant.IdentityToken,
		RefreshToken:  grant.RefreshToken,
		TokenType:     grant.TokenType,
		ExpiresIn:     grant.ExpiresIn,
	}
	// Сервер мог не ротировать refresh token, тогда сохраняем прежний.
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}

	if err := r.sessions.SetSession(ctx, next); err != nil {
		return nil, r.fail(ctx, err)
	}

	log.Info(ctx, LogRefreshSucceeded)
	return r.sessions.Session(), nil
}

// fail очищает сессию и возвращает причину сбоя обновления.
func (r *Refresher) fail(ctx context.Context, cause error) error {
	logger.Log(ctx).Warn(ctx, ErrorRefreshFailed, zap.Error(cause))
	_ = r.sessions.Clear(ctx)
	return cause
}
