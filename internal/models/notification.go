package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType определяет тип уведомления
type NotificationType string

const (
	NotificationTradeOffered  NotificationType = "trade_offered"
	NotificationTradeAccepted NotificationType = "trade_accepted"
	NotificationTradeDeclined NotificationType = "trade_declined"
)

// Notification представляет запись во входящих уведомлениях пользователя
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
