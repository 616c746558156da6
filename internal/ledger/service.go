package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stockbook/stockbook/internal/platform/cache"
	"github.com/stockbook/stockbook/internal/shared"
)

// EventStore abstracts the append-only log for the service.
type EventStore interface {
	Append(ctx context.Context, e Event) error
	List(ctx context.Context, filter EventFilter) ([]Event, error)
	Get(ctx context.Context, id uuid.UUID) (Event, error)
}

// ItemMasterPort supplies item attributes for snapshot rows.
type ItemMasterPort interface {
	AttributeMap(ctx context.Context) (map[string]ItemAttributes, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ErrInvalidOperation indicates an operation outside the closed set, or
// one that the endpoint cannot author.
var ErrInvalidOperation = errors.New("ledger: invalid operation")

// Service authors events and answers point-in-time queries. Validation
// lives here, at the authoring boundary; replay itself accepts any log.
type Service struct {
	store    EventStore
	items    ItemMasterPort
	audit    AuditPort
	snaps    *cache.Store
	validate *validator.Validate
	now      func() time.Time
	workers  int
}

// WithReplayWorkers sets the fan-out used when replaying for snapshots.
// Values below two keep replay sequential.
func (s *Service) WithReplayWorkers(n int) *Service {
	s.workers = n
	return s
}

// NewService builds Service. The cache store may be nil.
func NewService(store EventStore, items ItemMasterPort, audit AuditPort, snaps *cache.Store) *Service {
	return &Service{
		store:    store,
		items:    items,
		audit:    audit,
		snaps:    snaps,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// MovementInput describes an inbound or outbound movement to author.
type MovementInput struct {
	ItemName     string    `validate:"required"`
	LocationName string    `validate:"required"`
	Operation    Operation `validate:"required"`
	Quantity     int64     `validate:"gt=0"`
	UnitPrice    float64   `validate:"gte=0"`
	Counterparty string
	Note         string
	Actor        string `validate:"required"`
}

// StocktakeInput describes a physical count to author.
type StocktakeInput struct {
	ItemName     string `validate:"required"`
	LocationName string `validate:"required"`
	Counted      int64  `validate:"gte=0"`
	Note         string
	Actor        string `validate:"required"`
}

// PostMovement validates, encodes and appends one movement event.
// Outbound movements record their amount at the moving average before
// the movement, mirroring how replay will cost them.
func (s *Service) PostMovement(ctx context.Context, input MovementInput) (Event, error) {
	if err := s.validate.Struct(input); err != nil {
		return Event{}, fmt.Errorf("ledger: movement input: %w", err)
	}
	dir := input.Operation.Direction()
	if dir != DirectionIn && dir != DirectionOut {
		return Event{}, ErrInvalidOperation
	}

	now := s.now()
	e := Event{
		ID:           uuid.New(),
		OccurredAt:   now,
		ItemName:     input.ItemName,
		LocationName: input.LocationName,
		Operation:    input.Operation,
		Counterparty: input.Counterparty,
		Note:         input.Note,
		Actor:        input.Actor,
	}
	switch dir {
	case DirectionIn:
		e.QuantityRaw = Quantity{Kind: QuantityDelta, Delta: input.Quantity}.Encode()
		e.UnitPrice = input.UnitPrice
		e.Amount = float64(input.Quantity) * input.UnitPrice
	case DirectionOut:
		st, err := s.currentState(ctx, input.ItemName, input.LocationName, now)
		if err != nil {
			return Event{}, err
		}
		e.QuantityRaw = Quantity{Kind: QuantityDelta, Delta: -input.Quantity}.Encode()
		e.UnitPrice = input.UnitPrice
		e.Amount = float64(input.Quantity) * st.AverageCost()
	}

	if err := s.append(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// PostStocktake appends a physical count as an audited correction. The
// current book quantity is always recorded as the prior value so the
// count stays reversible later.
func (s *Service) PostStocktake(ctx context.Context, input StocktakeInput) (Event, error) {
	if err := s.validate.Struct(input); err != nil {
		return Event{}, fmt.Errorf("ledger: stocktake input: %w", err)
	}
	now := s.now()
	st, err := s.currentState(ctx, input.ItemName, input.LocationName, now)
	if err != nil {
		return Event{}, err
	}
	e := Event{
		ID:           uuid.New(),
		OccurredAt:   now,
		ItemName:     input.ItemName,
		LocationName: input.LocationName,
		Operation:    OpStocktake,
		QuantityRaw:  Quantity{Kind: QuantitySetAudited, Prior: st.Quantity, New: input.Counted, HasNew: true}.Encode(),
		Note:         input.Note,
		Actor:        input.Actor,
	}
	if err := s.append(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Snapshot returns the stock table as of cutoff for the locations.
func (s *Service) Snapshot(ctx context.Context, cutoff time.Time, locations []string) ([]SnapshotRow, error) {
	key, err := s.snaps.BuildKey(ctx, snapshotKeyParts(cutoff, locations)...)
	if err != nil {
		return nil, err
	}
	var rows []SnapshotRow
	err = s.snaps.FetchJSON(ctx, key, &rows, func(ctx context.Context) (any, error) {
		return s.buildSnapshot(ctx, cutoff, locations)
	})
	return rows, err
}

// ReversalAdvice computes the compensation for retracting one event.
func (s *Service) ReversalAdvice(ctx context.Context, id uuid.UUID) (Reversal, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return Reversal{}, err
	}
	return Reverse(e)
}

func (s *Service) buildSnapshot(ctx context.Context, cutoff time.Time, locations []string) ([]SnapshotRow, error) {
	events, err := s.store.List(ctx, EventFilter{Until: cutoff, Locations: locations})
	if err != nil {
		return nil, err
	}
	master, err := s.items.AttributeMap(ctx)
	if err != nil {
		return nil, err
	}
	if s.workers > 1 {
		states, err := ReplayConcurrent(ctx, events, cutoff, locations, s.workers)
		if err != nil {
			return nil, err
		}
		return SnapshotRows(states, master), nil
	}
	return Snapshot(events, master, cutoff, locations), nil
}

func (s *Service) currentState(ctx context.Context, item, location string, now time.Time) (State, error) {
	events, err := s.store.List(ctx, EventFilter{Until: now, Locations: []string{location}})
	if err != nil {
		return State{}, err
	}
	states := Replay(events, now, []string{location})
	return states[Key{ItemName: item, LocationName: location}], nil
}

func (s *Service) append(ctx context.Context, e Event) error {
	if err := s.store.Append(ctx, e); err != nil {
		return err
	}
	_ = s.snaps.Bump(ctx)
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    e.Actor,
			Action:   fmt.Sprintf("ledger:%s", e.Operation),
			Entity:   "stock_event",
			EntityID: e.ID.String(),
			Meta: map[string]any{
				"item":     e.ItemName,
				"location": e.LocationName,
				"quantity": e.QuantityRaw,
			},
			At: e.OccurredAt,
		})
	}
	return nil
}

func snapshotKeyParts(cutoff time.Time, locations []string) []string {
	parts := []string{"snapshot", cutoff.UTC().Format(time.RFC3339)}
	return append(parts, locations...)
}
