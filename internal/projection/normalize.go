package projection

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/models"
)

// ErrMalformedRow возвращается, когда полезную нагрузку события нельзя
// привести к нормализованному виду. Такие строки пропускаются, сырые
// данные дальше границы не проходят.
var ErrMalformedRow = errors.New("строка не приводится к нормализованному виду")

// swapRow — промежуточная форма для строгого разбора строки swaps из
// произвольного источника (NOTIFY-нагрузка, ответ внешнего API).
// Идентификаторы приходят строками и валидируются явно.
type swapRow struct {
	ID            string     `json:"id"`
	ItemID        string     `json:"item_id"`
	OfferedItemID *string    `json:"offered_item_id"`
	SenderID      string     `json:"sender_id"`
	ReceiverID    string     `json:"receiver_id"`
	Message       *string    `json:"message"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

// NormalizeSwap приводит сырую строку к models.Swap. Функция тотальна на
// валидном входе и отвергает всё остальное: отсутствие обязательных полей,
// кривые UUID, неизвестный статус.
func NormalizeSwap(raw json.RawMessage) (*models.Swap, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: пустая нагрузка", ErrMalformedRow)
	}

	var row swapRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}

	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: неверный id %q", ErrMalformedRow, row.ID)
	}
	itemID, err := uuid.Parse(row.ItemID)
	if err != nil {
		return nil, fmt.Errorf("%w: неверный item_id %q", ErrMalformedRow, row.ItemID)
	}
	senderID, err := uuid.Parse(row.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: неверный sender_id %q", ErrMalformedRow, row.SenderID)
	}
	receiverID, err := uuid.Parse(row.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("%w: неверный receiver_id %q", ErrMalformedRow, row.ReceiverID)
	}

	status := models.SwapStatus(row.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: неизвестный статус %q", ErrMalformedRow, row.Status)
	}

	swap := &models.Swap{
		ID:         id,
		ItemID:     itemID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     status,
		CreatedAt:  row.CreatedAt,
	}

	if row.OfferedItemID != nil {
		offeredID, err := uuid.Parse(*row.OfferedItemID)
		if err != nil {
			return nil, fmt.Errorf("%w: неверный offered_item_id %q", ErrMalformedRow, *row.OfferedItemID)
		}
		swap.OfferedItemID = &offeredID
	}
	if row.Message != nil {
		swap.Message = *row.Message
	}
	if row.UpdatedAt != nil {
		swap.UpdatedAt = *row.UpdatedAt
	} else {
		swap.UpdatedAt = row.CreatedAt
	}

	return swap, nil
}
