package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSwapStatus(t *testing.T) {
	cases := []struct {
		status   SwapStatus
		valid    bool
		terminal bool
	}{
		{SwapStatusPending, true, false},
		{SwapStatusAccepted, true, true},
		{SwapStatusDeclined, true, true},
		{SwapStatusCanceled, true, true},
		{SwapStatus("rejected"), false, false},
		{SwapStatus(""), false, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, tc.status.IsValid(), string(tc.status))
		assert.Equal(t, tc.terminal, tc.status.IsTerminal(), string(tc.status))
	}
}

func TestSwapPreconditions(t *testing.T) {
	sender, receiver, stranger := uuid.New(), uuid.New(), uuid.New()
	swap := Swap{SenderID: sender, ReceiverID: receiver, Status: SwapStatusPending}

	t.Run("Pending", func(t *testing.T) {
		assert.True(t, swap.CanAccept(receiver))
		assert.True(t, swap.CanDecline(receiver))
		assert.True(t, swap.CanCancel(sender))

		// Роли не взаимозаменяемы
		assert.False(t, swap.CanAccept(sender))
		assert.False(t, swap.CanCancel(receiver))
		assert.False(t, swap.CanAccept(stranger))
		assert.False(t, swap.CanCancel(stranger))
	})

	t.Run("Terminal", func(t *testing.T) {
		for _, status := range []SwapStatus{SwapStatusAccepted, SwapStatusDeclined, SwapStatusCanceled} {
			resolved := swap
			resolved.Status = status
			assert.False(t, resolved.CanAccept(receiver), string(status))
			assert.False(t, resolved.CanDecline(receiver), string(status))
			assert.False(t, resolved.CanCancel(sender), string(status))
		}
	})
}

func TestSwapInvolves(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	swap := Swap{SenderID: sender, ReceiverID: receiver}

	assert.True(t, swap.Involves(sender))
	assert.True(t, swap.Involves(receiver))
	assert.False(t, swap.Involves(uuid.New()))
}

func TestSwapIsSelfSwap(t *testing.T) {
	user := uuid.New()
	assert.True(t, (&Swap{SenderID: user, ReceiverID: user}).IsSelfSwap())
	assert.False(t, (&Swap{SenderID: user, ReceiverID: uuid.New()}).IsSelfSwap())
}
