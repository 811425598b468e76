package projection

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/models"
	"github.com/StephenBergman/FitSwap/internal/realtime"
	"github.com/StephenBergman/FitSwap/internal/session"
	"github.com/StephenBergman/FitSwap/internal/storage"
)

// Задержка перед полной пересинхронизацией, чтобы схлопнуть пачку
// подряд идущих событий в один refetch
const resyncDebounce = 200 * time.Millisecond

// ListFilter отбирает записи для выдачи списка
type ListFilter struct {
	Direction string            // sent, received или all
	Status    models.SwapStatus // пустое значение — все статусы
}

// SwapList поддерживает локальный кэш предложений обмена пользователя.
// Кэш наполняется массовой выборкой и патчится инкрементальными событиями;
// полная пересинхронизация безопасна и идемпотентна в любой момент.
type SwapList struct {
	store storage.SwapStore
	sess  *session.Session

	mu     sync.Mutex
	rows   map[uuid.UUID]models.Swap
	closed bool

	unsubscribe func()
	resyncTimer *time.Timer
}

// NewSwapList создаёт проекцию списка обменов для сессии пользователя
func NewSwapList(store storage.SwapStore, sess *session.Session) *SwapList {
	return &SwapList{
		store: store,
		sess:  sess,
		rows:  make(map[uuid.UUID]models.Swap),
	}
}

// Attach подписывает проекцию на события изменений записей swaps,
// касающихся пользователя с любой стороны обмена
func (p *SwapList) Attach(bus *realtime.Bus) {
	userID := p.sess.UserID.String()

	filter := func(ev realtime.Event) bool {
		var row struct {
			SenderID   string `json:"sender_id"`
			ReceiverID string `json:"receiver_id"`
		}
		if err := json.Unmarshal(ev.Row(), &row); err != nil {
			// Нечитаемая нагрузка: пропускаем к обработчику, он решит,
			// пересинхронизироваться ли целиком
			return true
		}
		return row.SenderID == userID || row.ReceiverID == userID
	}

	p.mu.Lock()
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	p.unsubscribe = bus.Subscribe("swaps", filter, p.ApplyEvent)
	p.mu.Unlock()
}

// Resync выполняет массовую выборку и полностью замещает кэш.
// Это безопасный откат при любом подозрении на рассинхрон.
func (p *SwapList) Resync(ctx context.Context) error {
	swaps, err := p.store.ListUserSwaps(ctx, p.sess.UserID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.rows = make(map[uuid.UUID]models.Swap, len(swaps))
	for _, swap := range swaps {
		p.rows[swap.ID] = swap
	}
	return nil
}

// ApplyEvent патчит кэш по событию изменения. События — подсказки, а не
// безусловная истина: запись с updated_at старше закэшированной
// игнорируется, чтобы перестановка событий в сети не откатывала статус.
func (p *SwapList) ApplyEvent(ev realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Представление уже закрыто; результат отбрасываем
	if p.closed {
		return
	}

	if ev.Type == realtime.EventDelete {
		if swap, err := NormalizeSwap(ev.Old); err == nil {
			delete(p.rows, swap.ID)
		}
		return
	}

	incoming, err := NormalizeSwap(ev.New)
	if err != nil {
		// Повреждённая строка внутрь не проходит; планируем полную
		// пересинхронизацию как безопасный откат
		log.Printf("Пропущено событие изменения: %v", err)
		p.scheduleResyncLocked()
		return
	}

	existing, ok := p.rows[incoming.ID]
	if ok && existing.UpdatedAt.After(incoming.UpdatedAt) {
		// Запоздавшее событие со старым состоянием; видимый статус
		// назад не откатываем
		return
	}

	if ok {
		// Обогащение вещами в нагрузке события не приходит — сохраняем его
		// от прежней записи
		incoming.RequestedItem = existing.RequestedItem
		incoming.OfferedItem = existing.OfferedItem
	}
	p.rows[incoming.ID] = *incoming
}

// Get возвращает запись проекции по ID
func (p *SwapList) Get(id uuid.UUID) (models.Swap, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	swap, ok := p.rows[id]
	return swap, ok
}

// List возвращает записи проекции от новых к старым.
// Self-swap записи скрываются, если сессия не включает их показ.
func (p *SwapList) List(filter ListFilter) []models.Swap {
	p.mu.Lock()
	defer p.mu.Unlock()

	swaps := make([]models.Swap, 0, len(p.rows))
	for _, swap := range p.rows {
		if swap.IsSelfSwap() && !p.sess.IncludeSelf {
			continue
		}
		switch filter.Direction {
		case "sent":
			if swap.SenderID != p.sess.UserID {
				continue
			}
		case "received":
			if swap.ReceiverID != p.sess.UserID {
				continue
			}
		}
		if filter.Status != "" && swap.Status != filter.Status {
			continue
		}
		swaps = append(swaps, swap)
	}

	sort.Slice(swaps, func(i, j int) bool {
		return swaps[i].CreatedAt.After(swaps[j].CreatedAt)
	})
	return swaps
}

// Close отписывает проекцию и помечает её закрытой: поздние события и
// результаты выборок не трогают освобождённое представление
func (p *SwapList) Close() {
	p.mu.Lock()
	p.closed = true
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	if p.resyncTimer != nil {
		p.resyncTimer.Stop()
		p.resyncTimer = nil
	}
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// scheduleResyncLocked взводит отложенную пересинхронизацию; повторный
// вызов сдвигает таймер. Вызывается под p.mu.
func (p *SwapList) scheduleResyncLocked() {
	if p.resyncTimer != nil {
		p.resyncTimer.Stop()
	}
	p.resyncTimer = time.AfterFunc(resyncDebounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Resync(ctx); err != nil {
			log.Printf("Ошибка пересинхронизации проекции: %v", err)
		}
	})
}
