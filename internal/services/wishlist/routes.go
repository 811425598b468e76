package wishlist

import (
	"github.com/gofiber/fiber/v3"

	"github.com/StephenBergman/FitSwap/internal/middleware"
)

// SetupRoutes настраивает маршруты для API списка желаний
func (s *WishlistService) SetupRoutes(app *fiber.App) {
	// Группа для API списка желаний
	api := app.Group("/api/wishlist")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Маршрут для получения списка желаний
	api.Get("/", s.GetWishlist)

	// Маршрут для добавления вещи
	api.Post("/", s.AddToWishlist)

	// Маршрут для удаления записи
	api.Delete("/:id", s.RemoveFromWishlist)

	// Маршрут для переключения вещи
	api.Post("/toggle/:itemId", s.ToggleWishlist)
}
