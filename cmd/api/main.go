package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/StephenBergman/FitSwap/internal/config"
	"github.com/StephenBergman/FitSwap/internal/db"
	"github.com/StephenBergman/FitSwap/internal/realtime"
	"github.com/StephenBergman/FitSwap/internal/services/item"
	"github.com/StephenBergman/FitSwap/internal/services/notification"
	swapservice "github.com/StephenBergman/FitSwap/internal/services/swap"
	"github.com/StephenBergman/FitSwap/internal/services/wishlist"
	"github.com/StephenBergman/FitSwap/internal/storage/postgres"
	swapengine "github.com/StephenBergman/FitSwap/internal/swap"
	"github.com/StephenBergman/FitSwap/internal/utils"
	"github.com/StephenBergman/FitSwap/internal/websocket"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	store := postgres.NewStore(db.Pool)
	engine := swapengine.NewEngine(store, store)

	// Шина изменений: слушатель NOTIFY публикует события, проекции и
	// WebSocket-менеджер подписываются
	bus := realtime.NewBus()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := realtime.NewListener(cfg, bus)
	listener.Start(ctx)

	wsManager := websocket.NewManager()
	defer wsManager.Shutdown()
	unsubscribe := wsManager.RelayChanges(bus)
	defer unsubscribe()

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "FitSwap API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	swapSvc := swapservice.NewSwapService(cfg, engine, store, bus)
	defer swapSvc.CloseProjections()
	itemSvc := item.NewItemService(cfg, store)
	wishlistSvc := wishlist.NewWishlistService(cfg, store)
	notificationSvc := notification.NewNotificationService(cfg, store)

	// Регистрируем маршруты
	swapSvc.SetupRoutes(app)
	itemSvc.SetupRoutes(app)
	wishlistSvc.SetupRoutes(app)
	notificationSvc.SetupRoutes(app)

	// Запускаем WebSocket сервер для push-уведомлений
	wsServer := websocket.NewServer(wsManager, utils.NewJWTService(cfg.JWTSecret))
	go func() {
		if err := wsServer.Listen(":" + cfg.WSPort); err != nil {
			log.Printf("❌ Ошибка WebSocket сервера: %v", err)
		}
	}()

	// Запускаем сервер
	log.Printf("✅ FitSwap API запущен на порту %s", cfg.HTTPPort)
	log.Fatal(app.Listen(":" + cfg.HTTPPort))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
