package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/models"
	"github.com/StephenBergman/FitSwap/internal/storage"
)

// ListNotifications возвращает последние уведомления пользователя
func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
        SELECT id, user_id, type, COALESCE(payload, '{}'::jsonb), is_read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса уведомлений: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Payload, &n.IsRead, &n.CreatedAt); err != nil {
			log.Printf("Ошибка сканирования уведомления: %v", err)
			continue
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CreateNotification вставляет новое уведомление
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
        INSERT INTO notifications (id, user_id, type, payload, is_read)
        VALUES ($1, $2, $3, $4, false)
        RETURNING created_at
    `, n.ID, n.UserID, n.Type, n.Payload).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания уведомления: %w", err)
	}
	return nil
}

// MarkRead помечает уведомление прочитанным
func (s *Store) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
        UPDATE notifications SET is_read = true
        WHERE id = $1 AND user_id = $2
    `, id, userID)
	if err != nil {
		return fmt.Errorf("ошибка обновления уведомления: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkAllRead помечает все уведомления пользователя прочитанными
func (s *Store) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
        UPDATE notifications SET is_read = true
        WHERE user_id = $1 AND is_read = false
    `, userID)
	if err != nil {
		return fmt.Errorf("ошибка обновления уведомлений: %w", err)
	}
	return nil
}
