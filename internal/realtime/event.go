package realtime

import (
	"encoding/json"
	"time"
)

// EventType определяет тип изменения записи
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event представляет уведомление об изменении записи. Доставка —
// at-least-once: возможны дубликаты и нарушение порядка, потребитель
// обязан трактовать событие как подсказку о возможном устаревании,
// а не как безусловную истину.
type Event struct {
	Type       EventType       `json:"type"`
	Table      string          `json:"table"`
	Old        json.RawMessage `json:"old,omitempty"`
	New        json.RawMessage `json:"new,omitempty"`
	OccurredAt time.Time       `json:"occurred_at,omitempty"`
}

// Row возвращает полезную нагрузку события: new для вставки и обновления,
// old для удаления
func (e Event) Row() json.RawMessage {
	if e.Type == EventDelete {
		return e.Old
	}
	return e.New
}
