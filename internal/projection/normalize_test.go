package projection

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StephenBergman/FitSwap/internal/models"
)

func TestNormalizeSwap(t *testing.T) {
	id, itemID, senderID, receiverID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	updatedAt := createdAt.Add(time.Hour)

	t.Run("FullRow", func(t *testing.T) {
		offeredID := uuid.New()
		raw := fmt.Sprintf(`{
			"id": %q, "item_id": %q, "offered_item_id": %q,
			"sender_id": %q, "receiver_id": %q,
			"message": "махнёмся?", "status": "accepted",
			"created_at": %q, "updated_at": %q
		}`, id, itemID, offeredID, senderID, receiverID,
			createdAt.Format(time.RFC3339), updatedAt.Format(time.RFC3339))

		swap, err := NormalizeSwap(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Equal(t, id, swap.ID)
		assert.Equal(t, itemID, swap.ItemID)
		require.NotNil(t, swap.OfferedItemID)
		assert.Equal(t, offeredID, *swap.OfferedItemID)
		assert.Equal(t, "махнёмся?", swap.Message)
		assert.Equal(t, models.SwapStatusAccepted, swap.Status)
		assert.True(t, swap.UpdatedAt.Equal(updatedAt))
	})

	t.Run("NullOptionals", func(t *testing.T) {
		raw := fmt.Sprintf(`{
			"id": %q, "item_id": %q, "offered_item_id": null,
			"sender_id": %q, "receiver_id": %q,
			"message": null, "status": "pending",
			"created_at": %q, "updated_at": null
		}`, id, itemID, senderID, receiverID, createdAt.Format(time.RFC3339))

		swap, err := NormalizeSwap(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Nil(t, swap.OfferedItemID)
		assert.Empty(t, swap.Message)
		// updated_at по умолчанию равен created_at
		assert.True(t, swap.UpdatedAt.Equal(createdAt))
	})

	t.Run("Malformed", func(t *testing.T) {
		valid := fmt.Sprintf(`"item_id": %q, "sender_id": %q, "receiver_id": %q, "created_at": %q`,
			itemID, senderID, receiverID, createdAt.Format(time.RFC3339))

		cases := map[string]string{
			"EmptyPayload":  "",
			"NotJSON":       `{"id": `,
			"MissingID":     fmt.Sprintf(`{%s, "status": "pending"}`, valid),
			"BadID":         fmt.Sprintf(`{"id": "не-uuid", %s, "status": "pending"}`, valid),
			"BadOfferedID":  fmt.Sprintf(`{"id": %q, %s, "offered_item_id": "xx", "status": "pending"}`, id, valid),
			"UnknownStatus": fmt.Sprintf(`{"id": %q, %s, "status": "vanished"}`, id, valid),
		}

		for name, raw := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := NormalizeSwap(json.RawMessage(raw))
				assert.ErrorIs(t, err, ErrMalformedRow)
			})
		}
	})
}
