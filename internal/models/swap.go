package models

import (
	"time"

	"github.com/google/uuid"
)

// SwapStatus представляет статус предложения обмена
type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "pending"
	SwapStatusAccepted SwapStatus = "accepted"
	SwapStatusDeclined SwapStatus = "declined"
	SwapStatusCanceled SwapStatus = "canceled"
)

// IsValid проверяет, что статус входит в набор допустимых значений
func (s SwapStatus) IsValid() bool {
	switch s {
	case SwapStatusPending, SwapStatusAccepted, SwapStatusDeclined, SwapStatusCanceled:
		return true
	}
	return false
}

// IsTerminal возвращает true, если из статуса нет дальнейших переходов
func (s SwapStatus) IsTerminal() bool {
	return s == SwapStatusAccepted || s == SwapStatusDeclined || s == SwapStatusCanceled
}

// Swap представляет предложение обмена между двумя пользователями
type Swap struct {
	ID            uuid.UUID  `json:"id"`
	ItemID        uuid.UUID  `json:"item_id"`                   // запрашиваемая вещь (принадлежит получателю)
	OfferedItemID *uuid.UUID `json:"offered_item_id,omitempty"` // предлагаемая вещь, может быть добавлена позже
	SenderID      uuid.UUID  `json:"sender_id"`
	ReceiverID    uuid.UUID  `json:"receiver_id"`
	Message       string     `json:"message,omitempty"`
	Status        SwapStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Дополнительные поля для API
	RequestedItem *Item `json:"requested_item,omitempty"`
	OfferedItem   *Item `json:"offered_item,omitempty"`
	Sender        *User `json:"sender,omitempty"`
	Receiver      *User `json:"receiver,omitempty"`
}

// IsSelfSwap возвращает true, если отправитель и получатель совпадают.
// Такие записи допускаются на уровне данных, но скрываются в списках
// вне режима разработки.
func (t *Swap) IsSelfSwap() bool {
	return t.SenderID == t.ReceiverID
}

// CanAccept проверяет локальное предусловие для принятия предложения:
// действует получатель и предложение ещё в ожидании
func (t *Swap) CanAccept(actorID uuid.UUID) bool {
	return t.ReceiverID == actorID && t.Status == SwapStatusPending
}

// CanDecline проверяет локальное предусловие для отклонения предложения
func (t *Swap) CanDecline(actorID uuid.UUID) bool {
	return t.ReceiverID == actorID && t.Status == SwapStatusPending
}

// CanCancel проверяет локальное предусловие для отмены предложения:
// действует отправитель и предложение ещё в ожидании
func (t *Swap) CanCancel(actorID uuid.UUID) bool {
	return t.SenderID == actorID && t.Status == SwapStatusPending
}

// Involves возвращает true, если пользователь является стороной обмена
func (t *Swap) Involves(userID uuid.UUID) bool {
	return t.SenderID == userID || t.ReceiverID == userID
}
