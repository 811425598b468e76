package wishlist

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

// WishlistService представляет сервис для работы со списком желаний
type WishlistService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	store      storage.WishlistStore
}

// NewWishlistService создает новый экземпляр WishlistService
func NewWishlistService(cfg *config.Config, store storage.WishlistStore) *WishlistService {
	return &WishlistService{
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

// GetWishlist возвращает список желаний пользователя
func (s *WishlistService) GetWishlist(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	entries, err := s.store.ListWishlist(c.Context(), userID)
	if err != nil {
		log.Printf("Ошибка запроса списка желаний: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения списка желаний"})
	}

	return c.JSON(models.WishlistResponse{
		Entries: entries,
		Total:   len(entries),
	})
}

// AddToWishlist добавляет вещь в список желаний
func (s *WishlistService) AddToWishlist(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	// Извлекаем ID вещи из запроса
	var requestData struct {
		ItemID string `json:"item_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if requestData.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ID вещи не указан"})
	}

	itemID, err := uuid.Parse(requestData.ItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	entry, err := s.store.AddToWishlist(c.Context(), userID, itemID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		case errors.Is(err, storage.ErrItemArchived):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь снята с публикации"})
		case errors.Is(err, storage.ErrAlreadyInWishlist):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь уже добавлена в список желаний"})
		}
		log.Printf("Ошибка добавления в список желаний: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка добавления в список желаний"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"entry":   entry,
	})
}

// RemoveFromWishlist удаляет запись из списка желаний
func (s *WishlistService) RemoveFromWishlist(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID записи"})
	}

	if err := s.store.RemoveFromWishlist(c.Context(), userID, entryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Запись не найдена"})
		}
		log.Printf("Ошибка удаления из списка желаний: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления из списка желаний"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// ToggleWishlist добавляет вещь в список желаний либо убирает её
func (s *WishlistService) ToggleWishlist(c fiber.Ctx) error {
	userID, err := userIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID вещи"})
	}

	inWishlist, err := s.store.ToggleWishlist(c.Context(), userID, itemID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь не найдена"})
		case errors.Is(err, storage.ErrItemArchived):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Вещь снята с публикации"})
		}
		log.Printf("Ошибка переключения списка желаний: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления списка желаний"})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"in_wishlist": inWishlist,
	})
}
