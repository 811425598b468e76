package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/StephenBergman/FitSwap/internal/models"
	"github.com/StephenBergman/FitSwap/internal/storage"
)

const itemColumns = `i.id, i.user_id, i.title, COALESCE(i.description, ''),
       COALESCE(i.image_url, ''), COALESCE(i.trade_for, ''), i.archived_at, i.created_at, i.updated_at`

// scanItem сканирует строку запроса со столбцами itemColumns
func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
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
		return nil, err
	}
	return &item, nil
}

// GetItem возвращает вещь по ID
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := scanItem(s.pool.QueryRow(ctx, `
        SELECT `+itemColumns+`
        FROM items i
        WHERE i.id = $1
    `, id))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrItemNotFound
		}
		return nil, fmt.Errorf("ошибка запроса вещи: %w", err)
	}
	return item, nil
}

// ListActiveItems возвращает все опубликованные вещи для ленты
func (s *Store) ListActiveItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT `+itemColumns+`
        FROM items i
        WHERE i.archived_at IS NULL
        ORDER BY i.created_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса вещей: %w", err)
	}
	defer rows.Close()

	return collectItems(rows), rows.Err()
}

// ListUserItems возвращает все вещи пользователя, включая снятые с публикации
func (s *Store) ListUserItems(ctx context.Context, userID uuid.UUID) ([]models.Item, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT `+itemColumns+`
        FROM items i
        WHERE i.user_id = $1
        ORDER BY i.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса вещей пользователя: %w", err)
	}
	defer rows.Close()

	return collectItems(rows), rows.Err()
}

// CreateItem вставляет новую вещь
func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	err := s.pool.QueryRow(ctx, `
        INSERT INTO items (id, user_id, title, description, image_url, trade_for)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at
    `, item.ID, item.UserID, item.Title, item.Description, item.ImageURL, item.TradeFor).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания вещи: %w", err)
	}
	return nil
}

// ArchiveItem снимает вещь с публикации. Предикат archived_at IS NULL
// делает повторное снятие безопасным no-op с ErrNoMatch.
func (s *Store) ArchiveItem(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
        UPDATE items
        SET archived_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND user_id = $2 AND archived_at IS NULL
    `, id, ownerID)
	if err != nil {
		return fmt.Errorf("ошибка снятия вещи с публикации: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNoMatch
	}
	return nil
}

// UnarchiveItem возвращает вещь в публикацию
func (s *Store) UnarchiveItem(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
        UPDATE items
        SET archived_at = NULL, updated_at = NOW()
        WHERE id = $1 AND user_id = $2 AND archived_at IS NOT NULL
    `, id, ownerID)
	if err != nil {
		return fmt.Errorf("ошибка возврата вещи в публикацию: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNoMatch
	}
	return nil
}

func collectItems(rows pgx.Rows) []models.Item {
	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			log.Printf("Ошибка сканирования вещи: %v", err)
			continue
		}
		items = append(items, *item)
	}
	return items
}
