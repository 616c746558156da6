package locations

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLocationNotFound indicates a missing location row.
var ErrLocationNotFound = errors.New("locations: not found")

// ErrDuplicateLocation indicates a code or name collision.
var ErrDuplicateLocation = errors.New("locations: duplicate code or name")

// Repository persists locations in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const locationColumns = `id, code, name, kind, created_at, updated_at`

// List returns every location ordered by code.
func (r *Repository) List(ctx context.Context) ([]Location, error) {
	if r == nil {
		return nil, errors.New("locations repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.ID, &loc.Code, &loc.Name, &loc.Kind, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, err
		}
		all = append(all, loc)
	}
	return all, rows.Err()
}

// GetByName loads one location by the name stock events reference.
func (r *Repository) GetByName(ctx context.Context, name string) (Location, error) {
	if r == nil {
		return Location{}, errors.New("locations repository not initialised")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE name = $1`, name)
	var loc Location
	err := row.Scan(&loc.ID, &loc.Code, &loc.Name, &loc.Kind, &loc.CreatedAt, &loc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Location{}, ErrLocationNotFound
	}
	return loc, err
}

// Create inserts a new location.
func (r *Repository) Create(ctx context.Context, loc Location) (Location, error) {
	if r == nil {
		return Location{}, errors.New("locations repository not initialised")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO locations (code, name, kind)
		VALUES ($1, $2, $3)
		RETURNING `+locationColumns,
		loc.Code, loc.Name, loc.Kind,
	)
	var created Location
	err := row.Scan(&created.ID, &created.Code, &created.Name, &created.Kind, &created.CreatedAt, &created.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Location{}, ErrDuplicateLocation
	}
	return created, err
}
