package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/StephenBergman/FitSwap/internal/config"
	"github.com/StephenBergman/FitSwap/internal/db"
)

// Канал NOTIFY, в который триггеры базы пишут изменения записей
const notifyChannel = "record_changes"

// Listener читает NOTIFY-уведомления базы данных и публикует их в шину.
// Полезная нагрузка уведомления — JSON вида {"table","type","old","new"},
// который формируют триггеры (см. schema.sql).
type Listener struct {
	cfg *config.Config
	bus *Bus
}

// NewListener создаёт новый экземпляр Listener
func NewListener(cfg *config.Config, bus *Bus) *Listener {
	return &Listener{cfg: cfg, bus: bus}
}

// Start запускает цикл чтения уведомлений в отдельной горутине.
// При обрыве соединения цикл переподключается с паузой.
func (l *Listener) Start(ctx context.Context) {
	go l.run(ctx)
}

func (l *Listener) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if err := l.listen(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Ошибка соединения LISTEN, переподключение: %v", err)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := db.ListenConn(ctx, l.cfg)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}
	log.Printf("✅ Подписка на канал %s установлена", notifyChannel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var event Event
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			// Повреждённую нагрузку пропускаем; потребители в любой момент
			// могут выполнить полную пересинхронизацию
			log.Printf("Ошибка разбора уведомления: %v", err)
			continue
		}
		if event.OccurredAt.IsZero() {
			event.OccurredAt = time.Now()
		}

		l.bus.Publish(event)
	}
}
