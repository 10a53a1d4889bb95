package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobtrack/internal/client/config"
	broadcastPort "jobtrack/internal/client/ports/broadcast"
	storagePort "jobtrack/internal/client/ports/storage"
	"jobtrack/pkg/logger"
)

// Константы для логирования.
const (
	LogSessionStored   = "session stored"
	LogSessionCleared  = "session cleared"
	LogSessionReloaded = "session reloaded after change signal"

	ErrorFailedToLoad      = "failed to load session record"
	ErrorFailedToPersist   = "failed to persist session record"
	ErrorFailedToClear     = "failed to clear session record"
	ErrorFailedToSignal    = "failed to publish session change signal"
	ErrorListenerPanic     = "session listener panicked"
	ErrorFailedToSubscribe = "failed to subscribe to session change signal"
)

// Manager - единственный владелец и единственный писатель сессии.
// Все остальные компоненты читают сессию либо запрашивают запись
// через координатор обновления или явный SetSession/Clear.
type Manager struct {
	storage   storagePort.TokenStorage
	broadcast broadcastPort.Broadcast
	origin    string
	tokenSkew time.Duration

	mu        sync.RWMutex
	current   *Session
	listeners map[int]func(*Session)
	nextID    int

	unsubscribe func()
}

// NewManager создает менеджер сессии, загружает сохраненную запись
// и подписывается на сигналы об изменениях от других экземпляров.
// broadcast может быть nil, тогда работает только локальный экземпляр.
func NewManager(ctx context.Context, storage storagePort.TokenStorage, broadcast broadcastPort.Broadcast, cfg *config.SessionConfig) (*Manager, error) {
	m := &Manager{
		storage:   storage,
		broadcast: broadcast,
		origin:    uuid.New().String(),
		tokenSkew: cfg.TokenSkew,
		listeners: make(map[int]func(*Session)),
	}

	record, err := storage.Load(ctx)
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToLoad, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToLoad, err)
	}
	m.current = sessionFromRecord(record)

	if broadcast != nil {
		unsubscribe, err := broadcast.Subscribe(ctx, func(sig broadcastPort.Signal) {
			if sig.Origin == m.origin {
				return
			}
			m.reload(ctx)
		})
		if err != nil {
			logger.Log(ctx).Error(ctx, ErrorFailedToSubscribe, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrorFailedToSubscribe, err)
		}
		m.unsubscribe = unsubscribe
	}

	return m, nil
}

// Session возвращает копию текущей сессии либо nil.
func (m *Manager) Session() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	copied := *m.current
	return &copied
}

// AccessToken возвращает текущий access token либо пустую строку.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.AccessToken
}

// SetSession вычисляет срок действия, сохраняет запись и уведомляет
// подписчиков. Все поля сессии заменяются транзакционно.
func (m *Manager) SetSession(ctx context.Context, grant TokenGrant) error {
	if grant.AccessToken == "" {
		return ErrEmptyAccessToken
	}

	tokenType := grant.TokenType
	if tokenType == "" {
		tokenType = DefaultTokenType
	}

	var expiresAt time.Time
	switch {
	case grant.ExpiresIn > 0:
		expiresAt = time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second).Add(-m.tokenSkew)
	default:
		exp, ok := expiryFromToken(grant.AccessToken)
		if !ok {
			return ErrUnknownExpiry
		}
		expiresAt = exp.Add(-m.tokenSkew)
	}

	next := &Session{
		AccessToken:   grant.AccessToken,
		IdentityToken: grant.IdentityToken,
		RefreshToken:  grant.RefreshToken,
		TokenType:     tokenType,
		ExpiresAt:     expiresAt,
	}

	if err := m.storage.Save(ctx, recordFromSession(next)); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToPersist, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToPersist, err)
	}

	m.mu.Lock()
	m.current = next
	m.mu.Unlock()

	logger.Log(ctx).Info(ctx, LogSessionStored, zap.Time("expires_at", expiresAt))
	m.notify(ctx)
	m.signalChange(ctx)
	return nil
}

// Clear удаляет сессию. Повторный вызов безопасен и оставляет то же
// состояние: нет сессии, нет сохраненной записи.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.storage.Clear(ctx); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToClear, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToClear, err)
	}

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	logger.Log(ctx).Info(ctx, LogSessionCleared)
	m.notify(ctx)
	m.signalChange(ctx)
	return nil
}

// Subscribe регистрирует подписчика изменений сессии.
// Возвращает функцию отмены подписки.
func (m *Manager) Subscribe(fn func(*Session)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Close отписывается от канала сигналов.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// reload перечитывает локальное хранилище после чужого сигнала
// и переуведомляет локальных подписчиков.
func (m *Manager) reload(ctx context.Context) {
	record, err := m.storage.Load(ctx)
	if err != nil {
		logger.Log(ctx).Warn(ctx, ErrorFailedToLoad, zap.Error(err))
		return
	}

	m.mu.Lock()
	m.current = sessionFromRecord(record)
	m.mu.Unlock()

	logger.Log(ctx).Debug(ctx, LogSessionReloaded)
	m.notify(ctx)
}

// notify синхронно вызывает всех подписчиков с копией текущей сессии.
// Паника одного подписчика не мешает остальным.
func (m *Manager) notify(ctx context.Context) {
	m.mu.RLock()
	fns := make([]func(*Session), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	current := m.Session()
	for _, fn := range fns {
		m.invoke(ctx, fn, current)
	}
}

func (m *Manager) invoke(ctx context.Context, fn func(*Session), s *Session) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log(ctx).Error(ctx, ErrorListenerPanic, zap.Any("panic", r))
		}
	}()
	fn(s)
}

// signalChange отправляет сигнал другим экземплярам. Сбой канала
// не влияет на локальное состояние.
func (m *Manager) signalChange(ctx context.Context) {
	if m.broadcast == nil {
		return
	}
	sig := broadcastPort.Signal{Origin: m.origin, SentAt: time.Now()}
	if err := m.broadcast.Publish(ctx, sig); err != nil {
		logger.Log(ctx).Warn(ctx, ErrorFailedToSignal, zap.Error(err))
	}
}

func sessionFromRecord(record *storagePort.Record) *Session {
	if record == nil || record.AccessToken == "" {
		return nil
	}
	return &Session{
		AccessToken:   record.AccessToken,
		IdentityToken: record.IdentityToken,
		RefreshToken:  record.RefreshToken,
		TokenType:     record.TokenType,
		ExpiresAt:     record.ExpiresAt,
	}
}

func recordFromSession(s *Session) *storagePort.Record {
	return &storagePort.Record{
		AccessToken:   s.AccessToken,
		IdentityToken: s.IdentityToken,
		RefreshToken:  s.RefreshToken,
		TokenType:     s.TokenType,
		ExpiresAt:     s.ExpiresAt,
	}
}
