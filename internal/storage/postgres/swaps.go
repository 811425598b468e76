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

const swapColumns = `s.id, s.item_id, s.offered_item_id, s.sender_id, s.receiver_id,
       COALESCE(s.message, ''), s.status, s.created_at, s.updated_at`

// scanSwap сканирует строку запроса со столбцами swapColumns
func scanSwap(row pgx.Row) (*models.Swap, error) {
	var swap models.Swap
	err := row.Scan(
		&swap.ID,
		&swap.ItemID,
		&swap.OfferedItemID,
		&swap.SenderID,
		&swap.ReceiverID,
		&swap.Message,
		&swap.Status,
		&swap.CreatedAt,
		&swap.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

// GetSwap возвращает предложение обмена по ID
func (s *Store) GetSwap(ctx context.Context, id uuid.UUID) (*models.Swap, error) {
	swap, err := scanSwap(s.pool.QueryRow(ctx, `
        SELECT `+swapColumns+`
        FROM swaps s
        WHERE s.id = $1
    `, id))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrSwapNotFound
		}
		return nil, fmt.Errorf("ошибка запроса предложения обмена: %w", err)
	}

	s.attachItems(ctx, swap)
	return swap, nil
}

// ListUserSwaps возвращает предложения, где пользователь является
// отправителем или получателем
func (s *Store) ListUserSwaps(ctx context.Context, userID uuid.UUID) ([]models.Swap, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT `+swapColumns+`
        FROM swaps s
        WHERE s.sender_id = $1 OR s.receiver_id = $1
        ORDER BY s.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса предложений обмена: %w", err)
	}
	defer rows.Close()

	var swaps []models.Swap
	for rows.Next() {
		swap, err := scanSwap(rows)
		if err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		s.attachItems(ctx, swap)
		swaps = append(swaps, *swap)
	}
	return swaps, rows.Err()
}

// CreateSwap вставляет новое предложение обмена в статусе pending
func (s *Store) CreateSwap(ctx context.Context, swap *models.Swap) error {
	// Проверяем, не существует ли уже предложение в ожидании по той же паре
	var existing int
	err := s.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM swaps
        WHERE item_id = $1 AND offered_item_id IS NOT DISTINCT FROM $2
          AND sender_id = $3 AND status = 'pending'
    `, swap.ItemID, swap.OfferedItemID, swap.SenderID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("ошибка проверки существующих предложений: %w", err)
	}
	if existing > 0 {
		return storage.ErrDuplicateSwap
	}

	err = s.pool.QueryRow(ctx, `
        INSERT INTO swaps (id, item_id, offered_item_id, sender_id, receiver_id, message, status)
        VALUES ($1, $2, $3, $4, $5, $6, 'pending')
        RETURNING created_at, updated_at
    `, swap.ID, swap.ItemID, swap.OfferedItemID, swap.SenderID, swap.ReceiverID, swap.Message).
		Scan(&swap.CreatedAt, &swap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания предложения обмена: %w", err)
	}

	swap.Status = models.SwapStatusPending
	return nil
}

// TransitionSwap атомарно переводит предложение из статуса from в to.
// Предикат и запись — один оператор UPDATE: параллельный актор, успевший
// первым, оставит конкурента с нулём подошедших строк.
func (s *Store) TransitionSwap(ctx context.Context, id uuid.UUID, actor storage.ActorField, actorID uuid.UUID, from, to models.SwapStatus) (*models.Swap, error) {
	var actorColumn string
	switch actor {
	case storage.ActorSender:
		actorColumn = "sender_id"
	case storage.ActorReceiver:
		actorColumn = "receiver_id"
	default:
		return nil, fmt.Errorf("неизвестное поле актора: %q", actor)
	}

	swap, err := scanSwap(s.pool.QueryRow(ctx, `
        UPDATE swaps s
        SET status = $1, updated_at = NOW()
        WHERE s.id = $2 AND s.`+actorColumn+` = $3 AND s.status = $4
        RETURNING `+swapColumns+`
    `, to, id, actorID, from))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNoMatch
		}
		return nil, fmt.Errorf("ошибка обновления статуса предложения: %w", err)
	}
	return swap, nil
}

// attachItems загружает сведения о запрашиваемой и предлагаемой вещи.
// Ошибки здесь не фатальны: предложение возвращается без обогащения.
func (s *Store) attachItems(ctx context.Context, swap *models.Swap) {
	item, err := s.GetItem(ctx, swap.ItemID)
	if err != nil {
		log.Printf("Ошибка получения запрашиваемой вещи %s: %v", swap.ItemID, err)
	} else {
		swap.RequestedItem = item
	}

	if swap.OfferedItemID != nil {
		offered, err := s.GetItem(ctx, *swap.OfferedItemID)
		if err != nil {
			log.Printf("Ошибка получения предлагаемой вещи %s: %v", *swap.OfferedItemID, err)
		} else {
			swap.OfferedItem = offered
		}
	}
}
