// Package broadcast определяет интерфейс сигнала об изменении сессии
// между экземплярами клиента, разделяющими один профиль.
package broadcast

import (
	"context"
	"time"
)

// Signal сообщает, что состояние сессии изменилось. Полезная нагрузка
// не содержит саму сессию: получатель перечитывает локальное хранилище.
type Signal struct {
	Origin string    `json:"origin"`
	SentAt time.Time `json:"sent_at"`
}

// Broadcast определяет интерфейс канала сигналов об изменении сессии.
// Доставка гарантируется по принципу "как минимум один раз, в конечном счете".
type Broadcast interface {
	Publish(ctx context.Context, sig Signal) error

	Subscribe(ctx context.Context, fn func(Signal)) (func(), error)

	Close() error
}
