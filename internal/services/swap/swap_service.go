package swap

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/config"
	"github.com/StephenBergman/FitSwap/internal/models"
	"github.com/StephenBergman/FitSwap/internal/projection"
	"github.com/StephenBergman/FitSwap/internal/realtime"
	"github.com/StephenBergman/FitSwap/internal/session"
	"github.com/StephenBergman/FitSwap/internal/storage"
	swapengine "github.com/StephenBergman/FitSwap/internal/swap"
	"github.com/StephenBergman/FitSwap/internal/utils"
)

// SwapService представляет сервис для работы с предложениями обмена.
// Все переходы статусов идут через движок переговоров; сервис не содержит
// собственной логики переходов.
type SwapService struct {
	cfg           *config.Config
	jwtService    *utils.JWTService
	engine        *swapengine.Engine
	store         storage.Storage
	bus           *realtime.Bus
	projectionsMu sync.Mutex
	projections   map[uuid.UUID]*projection.SwapList
}

// NewSwapService создает новый экземпляр SwapService
func NewSwapService(cfg *config.Config, engine *swapengine.Engine, store storage.Storage, bus *realtime.Bus) *SwapService {
	return &SwapService{
		cfg:         cfg,
		jwtService:  utils.NewJWTService(cfg.JWTSecret),
		engine:      engine,
		store:       store,
		bus:         bus,
		projections: make(map[uuid.UUID]*projection.SwapList),
	}
}

// sessionFromCtx строит сессию из userID, положенного auth middleware
func (s *SwapService) sessionFromCtx(c fiber.Ctx) (*session.Session, error) {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		return nil, errors.New("пользователь не авторизован")
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errors.New("неверный формат ID пользователя")
	}
	return &session.Session{UserID: userUUID, IncludeSelf: s.cfg.IsDevelopment()}, nil
}

// getProjection возвращает проекцию списка обменов пользователя,
// создавая и наполняя её при первом обращении
func (s *SwapService) getProjection(ctx context.Context, sess *session.Session) (*projection.SwapList, error) {
	s.projectionsMu.Lock()
	proj, ok := s.projections[sess.UserID]
	if !ok {
		proj = projection.NewSwapList(s.store, sess)
		proj.Attach(s.bus)
		s.projections[sess.UserID] = proj
	}
	s.projectionsMu.Unlock()

	if !ok {
		if err := proj.Resync(ctx); err != nil {
			return nil, err
		}
	}
	return proj, nil
}

// CloseProjections закрывает все проекции; события после закрытия
// отбрасываются
func (s *SwapService) CloseProjections() {
	s.projectionsMu.Lock()
	defer s.projectionsMu.Unlock()

	for id, proj := range s.projections {
		proj.Close()
		delete(s.projections, id)
	}
}

// CreateSwap создает новое предложение обмена
func (s *SwapService) CreateSwap(c fiber.Ctx) error {
	sess, err := s.sessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	// Извлекаем данные из запроса
	var requestData struct {
		ItemID        string `json:"item_id"`
		OfferedItemID string `json:"offered_item_id"`
		Message       string `json:"message"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Необходимо указать ID запрашиваемой вещи"})
	}

	itemID, err := uuid.Parse(requestData.ItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	// Предлагаемая вещь опциональна и может быть добавлена позже
	var offeredItemID *uuid.UUID
	if requestData.OfferedItemID != "" {
		parsed, err := uuid.Parse(requestData.OfferedItemID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предлагаемой вещи"})
		}
		offeredItemID = &parsed
	}

	swap, err := s.engine.Create(c.Context(), sess, itemID, offeredItemID, requestData.Message)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		case errors.Is(err, storage.ErrItemArchived):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь снята с публикации"})
		case errors.Is(err, storage.ErrDuplicateSwap):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Такое предложение обмена уже существует"})
		}
		log.Printf("Ошибка создания предложения обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения предложения обмена"})
	}

	// Уведомляем получателя; сбой уведомления не отменяет созданный обмен
	s.notify(c.Context(), swap.ReceiverID, models.NotificationTradeOffered, swap)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"swap":    swap,
		"message": "Предложение обмена успешно создано",
	})
}

// GetMySwaps возвращает список входящих и исходящих предложений обмена
func (s *SwapService) GetMySwaps(c fiber.Ctx) error {
	sess, err := s.sessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	// Получаем тип предложений (входящие/исходящие/все)
	direction := c.Query("type", "all") // all, sent, received
	status := c.Query("status", "")     // pending, accepted, declined, canceled

	if status != "" && !models.SwapStatus(status).IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус предложения обмена"})
	}

	proj, err := s.getProjection(c.Context(), sess)
	if err != nil {
		log.Printf("Ошибка загрузки проекции обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложений обмена"})
	}

	swaps := proj.List(projection.ListFilter{
		Direction: direction,
		Status:    models.SwapStatus(status),
	})

	return c.JSON(fiber.Map{
		"swaps": swaps,
		"count": len(swaps),
	})
}

// GetSwap возвращает предложение обмена по ID
func (s *SwapService) GetSwap(c fiber.Ctx) error {
	sess, err := s.sessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	swapID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения обмена"})
	}

	swap, err := s.store.GetSwap(c.Context(), swapID)
	if err != nil {
		if errors.Is(err, storage.ErrSwapNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение обмена не найдено"})
		}
		log.Printf("Ошибка запроса предложения обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения обмена"})
	}

	// Чужие обмены не показываем
	if !swap.Involves(sess.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Доступ к этому предложению запрещён"})
	}

	return c.JSON(fiber.Map{"swap": swap})
}

// UpdateSwapStatus обновляет статус предложения обмена через движок
// переговоров (принятие/отклонение/отмена)
func (s *SwapService) UpdateSwapStatus(c fiber.Ctx) error {
	sess, err := s.sessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	swapID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения обмена"})
	}

	// Получаем новый статус из запроса
	var requestData struct {
		Status string `json:"status"` // accepted, declined, canceled
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	var outcome swapengine.Outcome
	var notifyType models.NotificationType

	switch models.SwapStatus(requestData.Status) {
	case models.SwapStatusAccepted:
		outcome = s.engine.Accept(c.Context(), sess, swapID)
		notifyType = models.NotificationTradeAccepted
	case models.SwapStatusDeclined:
		outcome = s.engine.Decline(c.Context(), sess, swapID)
		notifyType = models.NotificationTradeDeclined
	case models.SwapStatusCanceled:
		outcome = s.engine.Cancel(c.Context(), sess, swapID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус предложения обмена"})
	}

	switch outcome.Result {
	case swapengine.ResultApplied:
		if notifyType != "" {
			s.notify(c.Context(), outcome.Swap.SenderID, notifyType, outcome.Swap)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"swap":    outcome.Swap,
			"message": statusMessage(outcome.Swap.Status),
		})

	case swapengine.ResultAlreadyResolved:
		// Не сбой: обмен уже разрешён другой стороной. Отдаём актуальное
		// состояние, чтобы клиент показал его вместо отката вслепую.
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Обмен уже разрешён другой стороной",
			"swap":  outcome.Swap,
		})

	case swapengine.ResultRejected:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Действие недоступно для вашей роли или текущего статуса предложения",
		})

	case swapengine.ResultUnavailable:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение обмена не найдено"})

	default:
		log.Printf("Ошибка перехода статуса обмена %s: %v", swapID, outcome.Err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Сетевая ошибка, повторите попытку",
		})
	}
}

// notify создает уведомление для пользователя; ошибки только логируются
func (s *SwapService) notify(ctx context.Context, userID uuid.UUID, notifyType models.NotificationType, swap *models.Swap) {
	payload, err := json.Marshal(fiber.Map{"swap_id": swap.ID, "status": swap.Status})
	if err != nil {
		log.Printf("Ошибка сериализации уведомления: %v", err)
		return
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    notifyType,
		Payload: payload,
	}
	if err := s.store.CreateNotification(ctx, notification); err != nil {
		// Не возвращаем ошибку, т.к. основная функциональность выполнена
		log.Printf("Ошибка создания уведомления: %v", err)
	}
}

// statusMessage формирует сообщение в зависимости от нового статуса
func statusMessage(status models.SwapStatus) string {
	switch status {
	case models.SwapStatusAccepted:
		return "Предложение обмена принято"
	case models.SwapStatusDeclined:
		return "Предложение обмена отклонено"
	case models.SwapStatusCanceled:
		return "Предложение обмена отменено"
	}
	return "Статус предложения обновлён"
}
