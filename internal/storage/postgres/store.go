package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store реализует интерфейсы слоя данных поверх пула соединений pgx
type Store struct {
	pool *pgxpool.Pool
}

// NewStore создает новый экземпляр Store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
