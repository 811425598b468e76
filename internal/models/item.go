package models

import (
	"time"

	"github.com/google/uuid"
)

// Item представляет вещь, выставленную на обмен
type Item struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	TradeFor    string     `json:"trade_for,omitempty"` // что владелец хочет получить взамен
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsArchived возвращает true, если вещь снята с публикации.
// По снятой вещи нельзя создавать новые предложения обмена.
func (i *Item) IsArchived() bool {
	return i.ArchivedAt != nil
}
