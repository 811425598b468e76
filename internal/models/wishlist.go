package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistEntry представляет запись в списке желаний пользователя
type WishlistEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uuid.UUID `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`

	// Дополнительные поля для API
	Item *Item `json:"item,omitempty"`
}

// WishlistResponse представляет структуру ответа API со списком желаний
type WishlistResponse struct {
	Entries []WishlistEntry `json:"entries"`
	Total   int             `json:"total"`
}
