package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the append-only stock log in PostgreSQL. The
// table carries a serial column so that replay can break timestamp
// ties in insertion order.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ErrEventNotFound indicates a missing log row.
var ErrEventNotFound = errors.New("ledger: event not found")

// ErrDuplicateEvent indicates an insert with an already-used event ID.
var ErrDuplicateEvent = errors.New("ledger: duplicate event id")

// EventFilter bounds a log read. A zero Until means "everything";
// an empty Locations slice means all locations.
type EventFilter struct {
	Until     time.Time
	Locations []string
}

const eventColumns = `id, occurred_at, item_name, location_name, operation, quantity, unit_price, amount, counterparty, note, actor`

// Append inserts one event. Rows are never updated or deleted here;
// corrections and reversals arrive as new events.
func (r *Repository) Append(ctx context.Context, e Event) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO stock_events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.OccurredAt, e.ItemName, e.LocationName, string(e.Operation),
		e.QuantityRaw, e.UnitPrice, e.Amount, e.Counterparty, e.Note, e.Actor,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEvent
	}
	return err
}

// List reads events matching the filter in replay order.
func (r *Repository) List(ctx context.Context, filter EventFilter) ([]Event, error) {
	if r == nil {
		return nil, errors.New("ledger repository not initialised")
	}
	query := `SELECT ` + eventColumns + ` FROM stock_events`
	args := make([]any, 0, 2)
	where := ""
	if !filter.Until.IsZero() {
		args = append(args, filter.Until)
		where = ` WHERE occurred_at <= $1`
	}
	if len(filter.Locations) > 0 {
		args = append(args, filter.Locations)
		if where == "" {
			where = ` WHERE location_name = ANY($1)`
		} else {
			where += ` AND location_name = ANY($2)`
		}
	}
	query += where + ` ORDER BY occurred_at, seq`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Get loads a single event by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Event, error) {
	if r == nil {
		return Event{}, errors.New("ledger repository not initialised")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM stock_events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	return e, err
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row pgx.Row) (Event, error) {
	var (
		e  Event
		op string
	)
	err := row.Scan(&e.ID, &e.OccurredAt, &e.ItemName, &e.LocationName, &op,
		&e.QuantityRaw, &e.UnitPrice, &e.Amount, &e.Counterparty, &e.Note, &e.Actor)
	if err != nil {
		return Event{}, err
	}
	e.Operation = Operation(op)
	return e, nil
}
