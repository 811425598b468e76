package swap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StephenBergman/FitSwap/internal/models"
	"github.com/StephenBergman/FitSwap/internal/session"
	"github.com/StephenBergman/FitSwap/internal/storage"
)

// memStore — хранилище в памяти с теми же атомарными гарантиями условного
// обновления, что и Postgres: предикат и мутация проверяются под одной
// блокировкой. Счётчики вызовов позволяют проверять, что локальные
// предусловия отсекают сетевые обращения.
type memStore struct {
	mu    sync.Mutex
	swaps map[uuid.UUID]models.Swap
	items map[uuid.UUID]models.Item

	getCalls        int
	transitionCalls int

	// transitionErr форсирует транспортную ошибку условной записи
	transitionErr error
	// transitionGate, если задан, задерживает условную запись до закрытия
	transitionGate chan struct{}
}

func newMemStore() *memStore {
	return &memStore{
		swaps: make(map[uuid.UUID]models.Swap),
		items: make(map[uuid.UUID]models.Item),
	}
}

func (m *memStore) GetSwap(ctx context.Context, id uuid.UUID) (*models.Swap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++
	swap, ok := m.swaps[id]
	if !ok {
		return nil, storage.ErrSwapNotFound
	}
	out := swap
	return &out, nil
}

func (m *memStore) ListUserSwaps(ctx context.Context, userID uuid.UUID) ([]models.Swap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var swaps []models.Swap
	for _, swap := range m.swaps {
		if swap.Involves(userID) {
			swaps = append(swaps, swap)
		}
	}
	return swaps, nil
}

func (m *memStore) CreateSwap(ctx context.Context, swap *models.Swap) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.swaps {
		if existing.ItemID == swap.ItemID && existing.SenderID == swap.SenderID &&
			existing.Status == models.SwapStatusPending {
			return storage.ErrDuplicateSwap
		}
	}

	now := time.Now()
	swap.CreatedAt = now
	swap.UpdatedAt = now
	m.swaps[swap.ID] = *swap
	return nil
}

func (m *memStore) TransitionSwap(ctx context.Context, id uuid.UUID, actor storage.ActorField, actorID uuid.UUID, from, to models.SwapStatus) (*models.Swap, error) {
	if m.transitionGate != nil {
		<-m.transitionGate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.transitionCalls++
	if m.transitionErr != nil {
		return nil, m.transitionErr
	}

	swap, ok := m.swaps[id]
	if !ok || swap.Status != from {
		return nil, storage.ErrNoMatch
	}
	switch actor {
	case storage.ActorSender:
		if swap.SenderID != actorID {
			return nil, storage.ErrNoMatch
		}
	case storage.ActorReceiver:
		if swap.ReceiverID != actorID {
			return nil, storage.ErrNoMatch
		}
	}

	swap.Status = to
	swap.UpdatedAt = time.Now()
	m.swaps[id] = swap

	out := swap
	return &out, nil
}

func (m *memStore) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, storage.ErrItemNotFound
	}
	out := item
	return &out, nil
}

func (m *memStore) ListActiveItems(ctx context.Context) ([]models.Item, error)               { return nil, nil }
func (m *memStore) ListUserItems(ctx context.Context, userID uuid.UUID) ([]models.Item, error) { return nil, nil }
func (m *memStore) CreateItem(ctx context.Context, item *models.Item) error                  { return nil }
func (m *memStore) ArchiveItem(ctx context.Context, id, ownerID uuid.UUID) error             { return nil }
func (m *memStore) UnarchiveItem(ctx context.Context, id, ownerID uuid.UUID) error           { return nil }

func (m *memStore) counts() (gets, transitions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls, m.transitionCalls
}

func (m *memStore) status(id uuid.UUID) models.SwapStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.swaps[id].Status
}

// pendingSwap создаёт обмен в ожидании между двумя пользователями
func pendingSwap(sender, receiver uuid.UUID) models.Swap {
	now := time.Now().Add(-time.Minute)
	return models.Swap{
		ID:         uuid.New(),
		ItemID:     uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Status:     models.SwapStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func sessionFor(userID uuid.UUID) *session.Session {
	return &session.Session{UserID: userID}
}

func TestAcceptByReceiver(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	store := newMemStore()
	swap := pendingSwap(sender, receiver)
	store.swaps[swap.ID] = swap

	engine := NewEngine(store, store)
	outcome := engine.Accept(context.Background(), sessionFor(receiver), swap.ID)

	require.Equal(t, ResultApplied, outcome.Result)
	require.NotNil(t, outcome.Swap)
	assert.Equal(t, models.SwapStatusAccepted, outcome.Swap.Status)
	assert.Equal(t, models.SwapStatusAccepted, store.status(swap.ID))

	cached, ok := engine.Cache().Get(swap.ID)
	require.True(t, ok)
	assert.Equal(t, models.SwapStatusAccepted, cached.Status)
}

func TestDeclineByReceiver(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	store := newMemStore()
	swap := pendingSwap(sender, receiver)
	store.swaps[swap.ID] = swap

	engine := NewEngine(store, store)
	outcome := engine.Decline(context.Background(), sessionFor(receiver), swap.ID)

	require.Equal(t, ResultApplied, outcome.Result)
	assert.Equal(t, models.SwapStatusDeclined, store.status(swap.ID))
}

func TestCancelBySender(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	store := newMemStore()
	swap := pendingSwap(sender, receiver)
	store.swaps[swap.ID] = swap

	engine := NewEngine(store, store)
	outcome := engine.Cancel(context.Background(), sessionFor(sender), swap.ID)

	require.Equal(t, ResultApplied, outcome.Result)
	assert.Equal(t, models.SwapStatusCanceled, store.status(swap.ID))
}

// Отмена после того, как получатель уже принял обмен: предикат не совпадает,
// движок перечитывает истину и показывает accepted, а не canceled
func TestCancelAfterAccepted(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	store := newMemStore()
	swap := pendingSwap(sender, receiver)
	accepted := swap
	accepted.Status = models.SwapStatusAccepted
	accepted.UpdatedAt = time.Now()
	store.swaps[swap.ID] = accepted

	engine := NewEngine(store, store)
	// Кэш отправителя устарел и всё ещё показывает pending
	engine.Cache().Put(swap)

	outcome := engine.Cancel(context.Background(), sessionFor(sender), swap.ID)

	require.Equal(t, ResultAlreadyResolved, outcome.Result)
	require.NotNil(t, outcome.Swap)
	assert.Equal(t, models.SwapStatusAccepted, outcome.Swap.Status)

	cached, ok := engine.Cache().Get(swap.ID)
	require.True(t, ok)
	assert.Equal(t, models.SwapStatusAccepted, cached.Status, "кэш не должен показывать canceled")
	assert.Equal(t, models.SwapStatusAccepted, store.status(swap.ID))
}

// Чужой пользователь: локальное предусловие отклоняет без сетевого вызова
func TestStrangerRejectedWithoutNetworkCall(t *testing.T) {
	sender, receiver, stranger := uuid.New(), uuid.New(), uuid.New()
	store := newMemStore()
	swap := pendingSwap(sender, receiver)
	store.swaps[swap.ID] = swap

	engine := NewEngine(store, store)
	engine.Cache().Put(swap)

	for name, op := range map[string]func() Outcome{
		"stranger accept": func() Outcome { return engine.Accept(context.Background(), sessionFor(stranger), swap.ID) },
		"sender accept":   func() Outcome { return engine.Accept(context.Background(), sessionFor(sender), swap.ID) },
		"sender decline":  func() Outcome { return engine.Decline(context.Background(), sessionFor(sender), swap.ID) },
		"receiver cancel": func() Outcome { return engine.Cancel(context.Background(), sessionFor(receiver), swap.ID) },
	} {
		outcome := op()
		assert.Equal(t, ResultRejected, outcome.Result, name)
	}

	gets, transitions := store.counts()
	assert.Zero(t, gets, "предусловие не должно ходить в хранилище")
	assert.Zero(t, transitions, "предусловие не должно писать в хранилище")
	assert.Equal(t, models.SwapStatusPending, store.status(swap.ID))
}

// Повторное принятие с другого устройства после успешного: предикат не
// совпадает, исход — «уже разрешено», а не повторный успех
func TestAcceptIdempotence(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	store := newMemStore()
	swap := pendingSwap(sender, receiver)
	store.swaps[swap.ID] = swap

	first := NewEngine(store, store)
	require.Equal(t, ResultApplied, first.Accept(context.Background(), sessionFor(receiver), swap.ID).Result)

	// Второе устройство того же получателя со своим устаревшим кэшем
	second := NewEngine(store, store)
	second.Cache().Put(swap)
	outcome := second.Accept(context.Background(), sessionFor(receiver), swap.ID)

	require.Equal(t, ResultAlreadyResolved, outcome.Result)
	assert.Equal(t, models.SwapStatusAccepted, store.status(swap.ID))
}

// Гонка получателя и отправителя по одной записи: побеждает ровно один,
// проигравший наблюдает несовпадение предиката
func TestConcurrentResolutionOnlyOneWins(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	store := newMemStore()
	swap := pendingSwap(sender, receiver)
	store.swaps[swap.ID] = swap

	// Два процесса, у каждого свой кэш с pending
	senderEngine := NewEngine(store, store)
	senderEngine.Cache().Put(swap)
	receiverEngine := NewEngine(store, store)
	receiverEngine.Cache().Put(swap)

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		outcomes[0] = senderEngine.Cancel(context.Background(), sessionFor(sender), swap.ID)
	}()
	go func() {
		defer wg.Done()
		outcomes[1] = receiverEngine.Decline(context.Background(), sessionFor(receiver), swap.ID)
	}()
	wg.Wait()

	applied := 0
	for _, outcome := range outcomes {
		switch outcome.Result {
		case ResultApplied:
			applied++
		case ResultAlreadyResolved:
			// проигравший
		default:
			t.Fatalf("неожиданный исход гонки: %v (%v)", outcome.Result, outcome.Err)
		}
	}
	require.Equal(t, 1, applied, "ровно один переход должен пройти")

	// Терминальный статус больше не меняется
	final := store.status(swap.ID)
	assert.True(t, final.IsTerminal())

	again := senderEngine.Cancel(context.Background(), sessionFor(sender), swap.ID)
	assert.NotEqual(t, ResultApplied, again.Result)
	assert.Equal(t, final, store.status(swap.ID))
}

// Транспортная ошибка: оптимистичное состояние откатывается, кэш после
// операции совпадает со свежим авторитетным состоянием
func TestTransportErrorRollsBack(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	store := newMemStore()
	swap := pendingSwap(sender, receiver)
	store.swaps[swap.ID] = swap
	store.transitionErr = errors.New("connection reset by peer")

	engine := NewEngine(store, store)
	engine.Cache().Put(swap)

	outcome := engine.Accept(context.Background(), sessionFor(receiver), swap.ID)

	require.Equal(t, ResultFailed, outcome.Result)
	require.Error(t, outcome.Err)

	cached, ok := engine.Cache().Get(swap.ID)
	require.True(t, ok)

	store.transitionErr = nil
	fresh, err := store.GetSwap(context.Background(), swap.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.Status, cached.Status, "кэш обязан совпасть с авторитетным состоянием")
	assert.Equal(t, models.SwapStatusPending, cached.Status)
}

// Запись исчезла из хранилища: исход unavailable, локальная копия удаляется
func TestVanishedSwapPurgesCache(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	store := newMemStore()
	swap := pendingSwap(sender, receiver)

	engine := NewEngine(store, store)
	// Кэш ссылается на запись, которой в хранилище уже нет
	engine.Cache().Put(swap)

	outcome := engine.Accept(context.Background(), sessionFor(receiver), swap.ID)

	require.Equal(t, ResultUnavailable, outcome.Result)
	_, ok := engine.Cache().Get(swap.ID)
	assert.False(t, ok, "ссылка на исчезнувшую запись должна быть удалена")
}

// Операции по одной записи в рамках процесса сериализуются: пока переход в
// полёте, повторный вызов отклоняется локально
func TestInFlightOperationSerialized(t *testing.T) {
	sender, receiver := uuid.New(), uuid.New()
	store := newMemStore()
	swap := pendingSwap(sender, receiver)
	store.swaps[swap.ID] = swap
	store.transitionGate = make(chan struct{})

	engine := NewEngine(store, store)
	engine.Cache().Put(swap)

	started := make(chan Outcome, 1)
	go func() {
		started <- engine.Accept(context.Background(), sessionFor(receiver), swap.ID)
	}()

	// Дожидаемся, пока первая операция повиснет на условной записи
	require.Eventually(t, func() bool {
		engine.inflightMu.Lock()
		inflight := engine.inflight[swap.ID]
		engine.inflightMu.Unlock()
		return inflight
	}, time.Second, 5*time.Millisecond)

	second := engine.Accept(context.Background(), sessionFor(receiver), swap.ID)
	assert.Equal(t, ResultRejected, second.Result)

	close(store.transitionGate)
	first := <-started
	assert.Equal(t, ResultApplied, first.Result)
}

func TestCreateSwap(t *testing.T) {
	owner, sender := uuid.New(), uuid.New()
	store := newMemStore()
	item := models.Item{ID: uuid.New(), UserID: owner, Title: "Джинсовая куртка"}
	offered := models.Item{ID: uuid.New(), UserID: sender, Title: "Свитер"}
	store.items[item.ID] = item
	store.items[offered.ID] = offered

	engine := NewEngine(store, store)

	t.Run("Success", func(t *testing.T) {
		created, err := engine.Create(context.Background(), sessionFor(sender), item.ID, &offered.ID, "махнёмся?")
		require.NoError(t, err)
		assert.Equal(t, models.SwapStatusPending, created.Status)
		assert.Equal(t, owner, created.ReceiverID)
		assert.Equal(t, sender, created.SenderID)

		cached, ok := engine.Cache().Get(created.ID)
		require.True(t, ok)
		assert.Equal(t, models.SwapStatusPending, cached.Status)
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := engine.Create(context.Background(), sessionFor(sender), item.ID, &offered.ID, "")
		assert.ErrorIs(t, err, storage.ErrDuplicateSwap)
	})

	t.Run("ArchivedItem", func(t *testing.T) {
		now := time.Now()
		archived := models.Item{ID: uuid.New(), UserID: owner, Title: "Пальто", ArchivedAt: &now}
		store.items[archived.ID] = archived

		_, err := engine.Create(context.Background(), sessionFor(sender), archived.ID, nil, "")
		assert.ErrorIs(t, err, storage.ErrItemArchived)
	})

	t.Run("OfferedItemNotOwned", func(t *testing.T) {
		foreign := models.Item{ID: uuid.New(), UserID: owner, Title: "Чужая вещь"}
		store.items[foreign.ID] = foreign

		_, err := engine.Create(context.Background(), sessionFor(sender), item.ID, &foreign.ID, "")
		assert.Error(t, err)
	})

	t.Run("MissingItem", func(t *testing.T) {
		_, err := engine.Create(context.Background(), sessionFor(sender), uuid.New(), nil, "")
		assert.ErrorIs(t, err, storage.ErrItemNotFound)
	})
}
