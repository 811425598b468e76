package session

import (
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/utils"
)

// ErrNoSession возвращается, когда пользователь не выполнил вход
var ErrNoSession = errors.New("нет активной сессии")

// Session представляет контекст текущего пользователя. Значение передаётся
// явно в движок и проекции вместо глобального состояния.
type Session struct {
	UserID uuid.UUID

	// IncludeSelf включает показ self-swap записей в списках.
	// По умолчанию включается только в окружении разработки.
	IncludeSelf bool
}

// Manager управляет жизненным циклом сессии: установка при входе, очистка
// при выходе. Зарегистрированные teardown-функции вызываются при выходе —
// так снимаются realtime-подписки, привязанные к пользователю.
type Manager struct {
	mu         sync.RWMutex
	jwtService *utils.JWTService
	current    *Session
	teardowns  []func()
	devMode    bool
}

// NewManager создаёт новый экземпляр Manager
func NewManager(jwtService *utils.JWTService, devMode bool) *Manager {
	return &Manager{jwtService: jwtService, devMode: devMode}
}

// SignIn устанавливает сессию из токена внешнего провайдера аутентификации
func (m *Manager) SignIn(token string) (*Session, error) {
	rawID, err := m.jwtService.ExtractUserID(token)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, err
	}

	sess := &Session{UserID: userID, IncludeSelf: m.devMode}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	return sess, nil
}

// Current возвращает активную сессию или ErrNoSession
func (m *Manager) Current() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, ErrNoSession
	}
	return m.current, nil
}

// OnSignOut регистрирует функцию, вызываемую при выходе пользователя
func (m *Manager) OnSignOut(fn func()) {
	m.mu.Lock()
	m.teardowns = append(m.teardowns, fn)
	m.mu.Unlock()
}

// SignOut очищает сессию и вызывает все teardown-функции
func (m *Manager) SignOut() {
	m.mu.Lock()
	teardowns := m.teardowns
	m.teardowns = nil
	m.current = nil
	m.mu.Unlock()

	for _, fn := range teardowns {
		fn()
	}

	log.Println("Сессия завершена, подписки пользователя сняты")
}
