package websocket

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/StephenBergman/FitSwap/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Браузерные клиенты приходят с разных origin; доступ защищён токеном
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server принимает WebSocket подключения и регистрирует их в менеджере
type Server struct {
	manager    *Manager
	jwtService *utils.JWTService
}

// NewServer создает новый экземпляр Server
func NewServer(manager *Manager, jwtService *utils.JWTService) *Server {
	return &Server{manager: manager, jwtService: jwtService}
}

// ServeHTTP обрабатывает запрос на подключение по адресу /ws?token=...
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	userID, err := s.jwtService.ExtractUserID(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}
	if _, err := uuid.Parse(userID); err != nil {
		http.Error(w, "invalid user id", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Ошибка апгрейда WebSocket: %v", err)
		return
	}

	client := NewClient(userID, conn, s.manager)
	client.Start()
}

// Listen запускает отдельный HTTP сервер для WebSocket подключений
func (s *Server) Listen(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	log.Printf("✅ WebSocket сервер запущен на %s", addr)
	return http.ListenAndServe(addr, mux)
}
