package item

import (
	"github.com/gofiber/fiber/v3"

	"github.com/StephenBergman/FitSwap/internal/middleware"
)

// SetupRoutes настраивает маршруты для API вещей
func (s *ItemService) SetupRoutes(app *fiber.App) {
	// Группа для API вещей
	api := app.Group("/api/items")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Маршрут для ленты опубликованных вещей
	api.Get("/", s.GetFeed)

	// Маршрут для вещей текущего пользователя
	api.Get("/my", s.GetMyItems)

	// Маршрут для получения вещи
	api.Get("/:id", s.GetItem)

	// Маршрут для публикации вещи
	api.Post("/", s.CreateItem)

	// Маршруты снятия с публикации и возврата
	api.Put("/:id/delist", s.DelistItem)
	api.Put("/:id/relist", s.RelistItem)
}
