package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/models"
)

// ActorField определяет, чьё совпадение требует предикат условного
// обновления: отправителя или получателя предложения.
type ActorField string

const (
	ActorSender   ActorField = "sender_id"
	ActorReceiver ActorField = "receiver_id"
)

// SwapStore определяет операции хранилища предложений обмена.
// TransitionSwap — критичный примитив: предикат и запись выполняются одним
// атомарным оператором на стороне базы, а не чтением с последующей записью.
type SwapStore interface {
	// GetSwap возвращает предложение по ID или ErrSwapNotFound
	GetSwap(ctx context.Context, id uuid.UUID) (*models.Swap, error)

	// ListUserSwaps возвращает предложения, где пользователь является
	// отправителем или получателем, от новых к старым
	ListUserSwaps(ctx context.Context, userID uuid.UUID) ([]models.Swap, error)

	// CreateSwap вставляет новое предложение в статусе pending
	CreateSwap(ctx context.Context, swap *models.Swap) error

	// TransitionSwap атомарно переводит предложение из from в to при
	// условии, что actorField записи равно actorID и статус всё ещё from.
	// Возвращает обновлённую строку либо ErrNoMatch, если ни одна строка
	// не подошла под предикат.
	TransitionSwap(ctx context.Context, id uuid.UUID, actor ActorField, actorID uuid.UUID, from, to models.SwapStatus) (*models.Swap, error)
}

// ItemStore определяет операции хранилища вещей
type ItemStore interface {
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListActiveItems(ctx context.Context) ([]models.Item, error)
	ListUserItems(ctx context.Context, userID uuid.UUID) ([]models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error

	// ArchiveItem снимает вещь с публикации; обновление защищено предикатом
	// archived_at IS NULL и возвращает ErrNoMatch, если вещь уже снята
	ArchiveItem(ctx context.Context, id, ownerID uuid.UUID) error
	UnarchiveItem(ctx context.Context, id, ownerID uuid.UUID) error
}

// WishlistStore определяет операции со списком желаний
type WishlistStore interface {
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistEntry, error)
	AddToWishlist(ctx context.Context, userID, itemID uuid.UUID) (*models.WishlistEntry, error)
	RemoveFromWishlist(ctx context.Context, userID, entryID uuid.UUID) error

	// ToggleWishlist добавляет вещь в список желаний либо убирает её.
	// Возвращает true, если после вызова вещь находится в списке.
	ToggleWishlist(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
}

// NotificationStore определяет операции с входящими уведомлениями
type NotificationStore interface {
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// Storage объединяет все операции слоя данных. Компоненты должны зависеть
// от узких интерфейсов выше, а не от этого.
type Storage interface {
	SwapStore
	ItemStore
	WishlistStore
	NotificationStore
}
