package swap

import (
	"sync"

	"github.com/google/uuid"

	"github.com/StephenBergman/FitSwap/internal/models"
)

// Cache хранит локальные проекции предложений обмена для открытых
// представлений. Это не источник истины: любая запись может быть
// перезаписана сверкой с хранилищем.
type Cache struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]models.Swap
}

// NewCache создаёт новый экземпляр Cache
func NewCache() *Cache {
	return &Cache{rows: make(map[uuid.UUID]models.Swap)}
}

// Get возвращает копию закэшированной записи
func (c *Cache) Get(id uuid.UUID) (models.Swap, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.rows[id]
	return row, ok
}

// Put кладёт запись в кэш, перезаписывая существующую
func (c *Cache) Put(row models.Swap) {
	c.mu.Lock()
	c.rows[row.ID] = row
	c.mu.Unlock()
}

// Remove удаляет запись из кэша
func (c *Cache) Remove(id uuid.UUID) {
	c.mu.Lock()
	delete(c.rows, id)
	c.mu.Unlock()
}

// Len возвращает количество закэшированных записей
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}
