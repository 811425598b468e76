package notification

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/config"
	"github.com/StephenBergman/FitSwap/internal/storage"
	"github.com/StephenBergman/FitSwap/internal/utils"
)

// NotificationService представляет сервис входящих уведомлений
type NotificationService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	store      storage.NotificationStore
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(cfg *config.Config, store storage.NotificationStore) *NotificationService {
	return &NotificationService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		store:      store,
	}
}

func userIDFromCtx(c fiber.Ctx) (uuid.UUID, error) {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		return uuid.Nil, errors.New("пользователь не авторизован")
	}
	return uuid.Parse(userID)
}

// GetNotifications возвращает последние уведомления пользователя
func (s *NotificationService) GetNotifications(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	notifications, err := s.store.ListNotifications(c.Context(), userID, limit)
	if err != nil {
		log.Printf("Ошибка запроса уведомлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения уведомлений"})
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"count":         len(notifications),
		"unread":        unread,
	})
}

// MarkRead помечает уведомление прочитанным
func (s *NotificationService) MarkRead(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID уведомления"})
	}

	if err := s.store.MarkRead(c.Context(), userID, notificationID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Уведомление не найдено"})
		}
		log.Printf("Ошибка обновления уведомления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления уведомления"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead помечает все уведомления пользователя прочитанными
func (s *NotificationService) MarkAllRead(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	if err := s.store.MarkAllRead(c.Context(), userID); err != nil {
		log.Printf("Ошибка обновления уведомлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления уведомлений"})
	}

	return c.JSON(fiber.Map{"success": true})
}
