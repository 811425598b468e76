package item

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/config"
	"github.com/StephenBergman/FitSwap/internal/models"
	"github.com/StephenBergman/FitSwap/internal/storage"
	"github.com/StephenBergman/FitSwap/internal/utils"
)

// ItemService представляет сервис для работы с вещами
type ItemService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	store      storage.ItemStore
}

// NewItemService создает новый экземпляр ItemService
func NewItemService(cfg *config.Config, store storage.ItemStore) *ItemService {
	return &ItemService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		store:      store,
	}
}

// userIDFromCtx извлекает UUID пользователя из контекста запроса
func userIDFromCtx(c fiber.Ctx) (uuid.UUID, error) {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		return uuid.Nil, errors.New("пользователь не авторизован")
	}
	return uuid.Parse(userID)
}

// GetFeed возвращает ленту опубликованных вещей
func (s *ItemService) GetFeed(c fiber.Ctx) error {
	items, err := s.store.ListActiveItems(c.Context())
	if err != nil {
		log.Printf("Ошибка запроса ленты вещей: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещей"})
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// GetItem возвращает вещь по ID
func (s *ItemService) GetItem(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	item, err := s.store.GetItem(c.Context(), itemID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		}
		log.Printf("Ошибка запроса вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещи"})
	}

	return c.JSON(fiber.Map{"item": item})
}

// GetMyItems возвращает вещи пользователя, включая снятые с публикации
func (s *ItemService) GetMyItems(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	items, err := s.store.ListUserItems(c.Context(), userID)
	if err != nil {
		log.Printf("Ошибка запроса вещей пользователя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения вещей"})
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// CreateItem публикует новую вещь
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var requestData struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
		TradeFor    string `json:"trade_for"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Название вещи обязательно"})
	}

	item := &models.Item{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       requestData.Title,
		Description: requestData.Description,
		ImageURL:    requestData.ImageURL,
		TradeFor:    requestData.TradeFor,
	}

	if err := s.store.CreateItem(c.Context(), item); err != nil {
		log.Printf("Ошибка создания вещи: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения вещи"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"item":    item,
	})
}

// DelistItem снимает вещь с публикации. Обновление защищено предикатом
// archived_at IS NULL: повторное снятие с другого устройства — no-op.
func (s *ItemService) DelistItem(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	if err := s.store.ArchiveItem(c.Context(), itemID, userID); err != nil {
		if errors.Is(err, storage.ErrNoMatch) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь уже снята с публикации или не принадлежит вам"})
		}
		log.Printf("Ошибка снятия вещи с публикации: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления вещи"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// RelistItem возвращает вещь в публикацию
func (s *ItemService) RelistItem(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	if err := s.store.UnarchiveItem(c.Context(), itemID, userID); err != nil {
		if errors.Is(err, storage.ErrNoMatch) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь уже опубликована или не принадлежит вам"})
		}
		log.Printf("Ошибка возврата вещи в публикацию: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления вещи"})
	}

	return c.JSON(fiber.Map{"success": true})
}
