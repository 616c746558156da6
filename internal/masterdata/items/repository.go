package items

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrItemNotFound indicates a missing item row.
var ErrItemNotFound = errors.New("items: not found")

// ErrDuplicateItem indicates a name or code collision.
var ErrDuplicateItem = errors.New("items: duplicate code or name")

// Repository persists the item master in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, code, name, manufacturer, category, subcategory, unit, standard_price, created_at, updated_at`

// List returns the full item master ordered by code.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	if r == nil {
		return nil, errors.New("items repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM item_master ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByName loads one item by its display name, the key stock events
// reference.
func (r *Repository) GetByName(ctx context.Context, name string) (Item, error) {
	if r == nil {
		return Item{}, errors.New("items repository not initialised")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM item_master WHERE name = $1`, name)
	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	return item, err
}

// Create inserts a new item-master entry.
func (r *Repository) Create(ctx context.Context, item Item) (Item, error) {
	if r == nil {
		return Item{}, errors.New("items repository not initialised")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO item_master (code, name, manufacturer, category, subcategory, unit, standard_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+itemColumns,
		item.Code, item.Name, item.Manufacturer, item.Category, item.Subcategory, item.Unit, item.StandardPrice,
	)
	created, err := scanItem(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Item{}, ErrDuplicateItem
	}
	return created, err
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Code, &item.Name, &item.Manufacturer, &item.Category,
		&item.Subcategory, &item.Unit, &item.StandardPrice, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}
