package fiscal

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the closing calendar from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns every calendar entry ordered by closing date.
func (r *Repository) List(ctx context.Context) ([]Period, error) {
	if r == nil {
		return nil, errors.New("fiscal repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT label, closes_at FROM fiscal_periods ORDER BY closes_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.Label, &p.ClosesAt); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}
