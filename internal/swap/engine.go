package swap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/models"
	"github.com/StephenBergman/FitSwap/internal/session"
	"github.com/StephenBergman/FitSwap/internal/storage"
)

// Engine реализует машину состояний переговоров об обмене.
//
// Каждый переход проходит четыре фазы: локальное предусловие, оптимистичное
// применение к кэшу, условная запись в хранилище и сверка с авторитетным
// результатом. Единственный механизм контроля конкуренции — серверный
// предикат status = 'pending' в момент записи: из двух гонящихся акторов
// предикат совпадёт ровно у одного.
type Engine struct {
	store storage.SwapStore
	items storage.ItemStore
	cache *Cache

	// inflight сериализует операции по одной записи в рамках процесса.
	// Это локальная блокировка копии представления, не распределённая.
	inflightMu sync.Mutex
	inflight   map[uuid.UUID]bool
}

// NewEngine создаёт новый экземпляр Engine
func NewEngine(store storage.SwapStore, items storage.ItemStore) *Engine {
	return &Engine{
		store:    store,
		items:    items,
		cache:    NewCache(),
		inflight: make(map[uuid.UUID]bool),
	}
}

// Cache возвращает локальную проекцию движка
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Accept принимает предложение обмена. Разрешено только получателю
// и только из статуса pending.
func (e *Engine) Accept(ctx context.Context, sess *session.Session, swapID uuid.UUID) Outcome {
	return e.transition(ctx, sess, swapID, storage.ActorReceiver, models.SwapStatusAccepted,
		func(t *models.Swap) bool { return t.CanAccept(sess.UserID) })
}

// Decline отклоняет предложение обмена. Симметрично Accept,
// итоговый статус declined.
func (e *Engine) Decline(ctx context.Context, sess *session.Session, swapID uuid.UUID) Outcome {
	return e.transition(ctx, sess, swapID, storage.ActorReceiver, models.SwapStatusDeclined,
		func(t *models.Swap) bool { return t.CanDecline(sess.UserID) })
}

// Cancel отменяет предложение обмена. Разрешено только отправителю
// и только из статуса pending.
func (e *Engine) Cancel(ctx context.Context, sess *session.Session, swapID uuid.UUID) Outcome {
	return e.transition(ctx, sess, swapID, storage.ActorSender, models.SwapStatusCanceled,
		func(t *models.Swap) bool { return t.CanCancel(sess.UserID) })
}

// transition выполняет четырёхфазный протокол перехода статуса
func (e *Engine) transition(ctx context.Context, sess *session.Session, swapID uuid.UUID, actor storage.ActorField, to models.SwapStatus, allowed func(*models.Swap) bool) Outcome {
	if !e.begin(swapID) {
		// По этой записи уже идёт операция; UI блокирует кнопки на время
		// полёта, поэтому повторный вызов — локальный no-op
		return Outcome{Result: ResultRejected}
	}
	defer e.end(swapID)

	// Фаза 1: локальное предусловие по закэшированному представлению.
	// Нарушение роли или статуса отклоняется без сетевого вызова.
	cached, ok := e.cache.Get(swapID)
	if !ok {
		fresh, err := e.store.GetSwap(ctx, swapID)
		if err != nil {
			if errors.Is(err, storage.ErrSwapNotFound) {
				return Outcome{Result: ResultUnavailable}
			}
			return Outcome{Result: ResultFailed, Err: err}
		}
		cached = *fresh
		e.cache.Put(cached)
	}

	if !allowed(&cached) {
		out := cached
		return Outcome{Result: ResultRejected, Swap: &out}
	}

	// Фаза 2: оптимистичное применение — представление отражает действие,
	// не дожидаясь ответа хранилища
	prev := cached
	optimistic := cached
	optimistic.Status = to
	e.cache.Put(optimistic)

	// Фаза 3: условная запись. Предикат и мутация — один атомарный оператор
	// на стороне хранилища, не чтение с последующей записью.
	updated, err := e.store.TransitionSwap(ctx, swapID, actor, sess.UserID, models.SwapStatusPending, to)

	// Фаза 4: сверка
	switch {
	case err == nil:
		e.cache.Put(*updated)
		return Outcome{Result: ResultApplied, Swap: updated}

	case errors.Is(err, storage.ErrNoMatch):
		// Ноль подошедших строк: обмен уже разрешён параллельным актором
		// либо запись устарела. По результату записи это неразличимо —
		// откатываем оптимистичное состояние и перечитываем истину.
		e.cache.Put(prev)
		return e.reconcile(ctx, swapID, prev)

	default:
		// Транспортная ошибка: откат и ручной повтор, без автоматических
		// ретраев — не больше одной попытки на действие пользователя
		e.cache.Put(prev)
		return Outcome{Result: ResultFailed, Swap: &prev, Err: err}
	}
}

// reconcile перечитывает авторитетную запись после несовпадения предиката
func (e *Engine) reconcile(ctx context.Context, swapID uuid.UUID, prev models.Swap) Outcome {
	fresh, err := e.store.GetSwap(ctx, swapID)
	if err != nil {
		if errors.Is(err, storage.ErrSwapNotFound) {
			e.cache.Remove(swapID)
			return Outcome{Result: ResultUnavailable}
		}
		// Перечитать не удалось; кэш уже откатан к последнему известному
		// авторитетному состоянию
		return Outcome{Result: ResultFailed, Swap: &prev, Err: err}
	}

	e.cache.Put(*fresh)
	return Outcome{Result: ResultAlreadyResolved, Swap: fresh}
}

// Create создаёт новое предложение обмена по опубликованной вещи.
// Получатель — владелец запрашиваемой вещи; предлагаемая вещь, если
// указана, должна принадлежать отправителю и быть опубликованной.
func (e *Engine) Create(ctx context.Context, sess *session.Session, itemID uuid.UUID, offeredItemID *uuid.UUID, message string) (*models.Swap, error) {
	item, err := e.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.IsArchived() {
		return nil, storage.ErrItemArchived
	}

	if offeredItemID != nil {
		offered, err := e.items.GetItem(ctx, *offeredItemID)
		if err != nil {
			return nil, err
		}
		if offered.UserID != sess.UserID {
			return nil, fmt.Errorf("предлагаемая вещь не принадлежит отправителю")
		}
		if offered.IsArchived() {
			return nil, storage.ErrItemArchived
		}
	}

	swap := &models.Swap{
		ID:            uuid.New(),
		ItemID:        itemID,
		OfferedItemID: offeredItemID,
		SenderID:      sess.UserID,
		ReceiverID:    item.UserID,
		Message:       message,
		Status:        models.SwapStatusPending,
	}

	// Self-swap допускается на уровне данных; вне режима разработки
	// такие записи скрываются в списках
	if swap.IsSelfSwap() {
		log.Printf("⚠️ Создаётся self-swap пользователем %s", sess.UserID)
	}

	if err := e.store.CreateSwap(ctx, swap); err != nil {
		return nil, err
	}

	e.cache.Put(*swap)
	return swap, nil
}

// Resync принудительно перечитывает запись из хранилища в кэш.
// Безопасный идемпотентный откат для любого рассинхрона.
func (e *Engine) Resync(ctx context.Context, swapID uuid.UUID) (*models.Swap, error) {
	fresh, err := e.store.GetSwap(ctx, swapID)
	if err != nil {
		if errors.Is(err, storage.ErrSwapNotFound) {
			e.cache.Remove(swapID)
		}
		return nil, err
	}
	e.cache.Put(*fresh)
	return fresh, nil
}

// begin помечает запись как имеющую операцию в полёте
func (e *Engine) begin(swapID uuid.UUID) bool {
	e.inflightMu.Lock()
	defer e.inflightMu.Unlock()

	if e.inflight[swapID] {
		return false
	}
	e.inflight[swapID] = true
	return true
}

func (e *Engine) end(swapID uuid.UUID) {
	e.inflightMu.Lock()
	delete(e.inflight, swapID)
	e.inflightMu.Unlock()
}
