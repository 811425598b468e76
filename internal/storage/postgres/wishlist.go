package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/models"
	"github.com/StephenBergman/FitSwap/internal/storage"
)

// ListWishlist возвращает список желаний пользователя.
// Снятые с публикации вещи в список не попадают.
func (s *Store) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistEntry, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT w.id, w.user_id, w.item_id, w.created_at, `+itemColumns+`
        FROM wishlist w
        JOIN items i ON i.id = w.item_id
        WHERE w.user_id = $1 AND i.archived_at IS NULL
        ORDER BY w.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса списка желаний: %w", err)
	}
	defer rows.Close()

	var entries []models.WishlistEntry
	for rows.Next() {
		var entry models.WishlistEntry
		var item models.Item
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ItemID,
			&entry.CreatedAt,
			&item.ID,
			&item.UserID,
			&item.Title,
			&item.Description,
			&item.ImageURL,
			&item.TradeFor,
			&item.ArchivedAt,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			log.Printf("Ошибка сканирования записи списка желаний: %v", err)
			continue
		}
		entry.Item = &item
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// AddToWishlist добавляет вещь в список желаний пользователя
func (s *Store) AddToWishlist(ctx context.Context, userID, itemID uuid.UUID) (*models.WishlistEntry, error) {
	// Проверяем, что вещь существует и опубликована
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.IsArchived() {
		return nil, storage.ErrItemArchived
	}

	// Проверяем, не добавлена ли вещь уже
	var exists bool
	err = s.pool.QueryRow(ctx, `
        SELECT EXISTS(SELECT 1 FROM wishlist WHERE user_id = $1 AND item_id = $2)
    `, userID, itemID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки списка желаний: %w", err)
	}
	if exists {
		return nil, storage.ErrAlreadyInWishlist
	}

	entry := &models.WishlistEntry{
		ID:     uuid.New(),
		UserID: userID,
		ItemID: itemID,
	}
	err = s.pool.QueryRow(ctx, `
        INSERT INTO wishlist (id, user_id, item_id)
        VALUES ($1, $2, $3)
        RETURNING created_at
    `, entry.ID, entry.UserID, entry.ItemID).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка добавления в список желаний: %w", err)
	}

	entry.Item = item
	return entry, nil
}

// RemoveFromWishlist удаляет запись из списка желаний
func (s *Store) RemoveFromWishlist(ctx context.Context, userID, entryID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
        DELETE FROM wishlist WHERE id = $1 AND user_id = $2
    `, entryID, userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления из списка желаний: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ToggleWishlist добавляет вещь в список желаний либо убирает её.
// Возвращает true, если после вызова вещь находится в списке.
func (s *Store) ToggleWishlist(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
        DELETE FROM wishlist WHERE user_id = $1 AND item_id = $2
    `, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("ошибка переключения списка желаний: %w", err)
	}
	if tag.RowsAffected() > 0 {
		// Вещь была в списке и удалена
		return false, nil
	}

	_, err = s.AddToWishlist(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	return true, nil
}
