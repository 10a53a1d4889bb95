// Package events содержит механизм подписки на события авторизации,
// позволяющий верхнему слою реагировать на принудительный выход
// без обратной зависимости диспетчера от UI кода.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"jobtrack/pkg/logger"
)

// Константы для логирования.
const (
	ErrorListenerPanic = "event listener panicked"
)

// Коды причин, публикуемые ядром клиента.
const (
	CodeSessionExpired   = "session_expired"
	CodeEmailNotVerified = "email_not_verified"
)

// Reason описывает структурированную причину события.
type Reason struct {
	Code    string
	Message string
}

// Hub - множество подписчиков одного канала событий. Каждый подписчик
// вызывается изолированно: паника одного не подавляет остальных.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]func(Reason)
	nextID int
}

// NewHub создает пустой канал событий.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(Reason))}
}

// Subscribe регистрирует подписчика. Возвращает функцию отмены подписки.
func (h *Hub) Subscribe(fn func(Reason)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Publish синхронно доставляет событие всем текущим подписчикам.
// Подписчик, зарегистрированный после публикации, событие не получает.
func (h *Hub) Publish(ctx context.Context, reason Reason) {
	h.mu.RLock()
	fns := make([]func(Reason), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		h.invoke(ctx, fn, reason)
	}
}

func (h *Hub) invoke(ctx context.Context, fn func(Reason), reason Reason) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log(ctx).Error(ctx, ErrorListenerPanic, zap.Any("panic", r))
		}
	}()
	fn(reason)
}
