package repository

import (
	"context"
	"database/sql"
)

// CounterRepository hands out sequence numbers. The upsert runs as a single statement, so
// concurrent callers never receive the same value.
type CounterRepository struct {
	db *sql.DB
}

func NewCounterRepository(db *sql.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

func (r *CounterRepository) Next(ctx context.Context, name string) (int64, error) {
	const query = `
		INSERT INTO counters (name, last_number) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET last_number = counters.last_number + 1
		RETURNING last_number`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
