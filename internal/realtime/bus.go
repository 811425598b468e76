package realtime

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Handler обрабатывает событие изменения записи
type Handler func(Event)

// Filter отбирает события для подписчика; nil пропускает все
type Filter func(Event) bool

type subscription struct {
	table   string
	filter  Filter
	handler Handler
}

// Bus раздаёт события изменений подписчикам внутри процесса.
// Подписка возвращает функцию отписки; раздача синхронная, панику
// обработчика подавляем, чтобы один подписчик не ронял остальных.
type Bus struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]subscription
}

// NewBus создаёт новый экземпляр Bus
func NewBus() *Bus {
	return &Bus{subs: make(map[uuid.UUID]subscription)}
}

// Subscribe регистрирует обработчик событий по таблице.
// Возвращает функцию отписки.
func (b *Bus) Subscribe(table string, filter Filter, handler Handler) func() {
	id := uuid.New()

	b.mu.Lock()
	b.subs[id] = subscription{table: table, filter: filter, handler: handler}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish раздаёт событие всем подходящим подписчикам
func (b *Bus) Publish(event Event) {
	// Копируем срез под блокировкой, вызываем обработчики без неё
	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.table != "" && sub.table != event.Table {
			continue
		}
		if sub.filter != nil && !sub.filter(event) {
			continue
		}
		matched = append(matched, sub.handler)
	}
	b.mu.RUnlock()

	for _, handler := range matched {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Ошибка в обработчике события: %v", r)
				}
			}()
			handler(event)
		}()
	}
}

// SubscriberCount возвращает число активных подписок
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
