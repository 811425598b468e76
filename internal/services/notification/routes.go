package notification

import (
	"github.com/gofiber/fiber/v3"

	"github.com/StephenBergman/FitSwap/internal/middleware"
)

// SetupRoutes настраивает маршруты для API уведомлений
func (s *NotificationService) SetupRoutes(app *fiber.App) {
	// Группа для API уведомлений
	api := app.Group("/api/notifications")

	// Защищенные маршруты (требуют авторизации)
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Маршрут для получения уведомлений
	api.Get("/", s.GetNotifications)

	// Маршрут для пометки уведомления прочитанным
	api.Put("/:id/read", s.MarkRead)

	// Маршрут для пометки всех уведомлений прочитанными
	api.Put("/read-all", s.MarkAllRead)
}
