package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	events []Event
}

func (m *memoryStore) Append(_ context.Context, e Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *memoryStore) List(_ context.Context, filter EventFilter) ([]Event, error) {
	var allowed map[string]struct{}
	if len(filter.Locations) > 0 {
		allowed = make(map[string]struct{}, len(filter.Locations))
		for _, loc := range filter.Locations {
			allowed[loc] = struct{}{}
		}
	}
	var out []Event
	for _, e := range m.events {
		if !filter.Until.IsZero() && e.OccurredAt.After(filter.Until) {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[e.LocationName]; !ok {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryStore) Get(_ context.Context, id uuid.UUID) (Event, error) {
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return Event{}, ErrEventNotFound
}

type staticMaster map[string]ItemAttributes

func (m staticMaster) AttributeMap(context.Context) (map[string]ItemAttributes, error) {
	return m, nil
}

func newTestService(store *memoryStore) *Service {
	svc := NewService(store, staticMaster{}, nil, nil)
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return svc
}

func TestPostMovementEncodesDelta(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store)
	ctx := context.Background()

	in, err := svc.PostMovement(ctx, MovementInput{
		ItemName: "cable", LocationName: "main",
		Operation: OpPurchaseIn, Quantity: 5, UnitPrice: 100, Actor: "sato",
	})
	require.NoError(t, err)
	require.Equal(t, "+5", in.QuantityRaw)
	require.InDelta(t, 500, in.Amount, 0.001)

	out, err := svc.PostMovement(ctx, MovementInput{
		ItemName: "cable", LocationName: "main",
		Operation: OpIssueOut, Quantity: 2, Actor: "sato",
	})
	require.NoError(t, err)
	require.Equal(t, "-2", out.QuantityRaw)
	// Outbound amount is costed at the moving average, 100/unit.
	require.InDelta(t, 200, out.Amount, 0.001)
}

func TestPostMovementRejectsStocktakeKind(t *testing.T) {
	svc := newTestService(&memoryStore{})
	_, err := svc.PostMovement(context.Background(), MovementInput{
		ItemName: "cable", LocationName: "main",
		Operation: OpStocktake, Quantity: 1, Actor: "sato",
	})
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestPostMovementValidatesInput(t *testing.T) {
	svc := newTestService(&memoryStore{})
	_, err := svc.PostMovement(context.Background(), MovementInput{
		ItemName: "cable", LocationName: "main",
		Operation: OpPurchaseIn, Quantity: 0, Actor: "sato",
	})
	require.Error(t, err)
}

func TestPostStocktakeRecordsPrior(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.PostMovement(ctx, MovementInput{
		ItemName: "cable", LocationName: "main",
		Operation: OpPurchaseIn, Quantity: 15, UnitPrice: 100, Actor: "sato",
	})
	require.NoError(t, err)

	count, err := svc.PostStocktake(ctx, StocktakeInput{
		ItemName: "cable", LocationName: "main", Counted: 12, Actor: "sato",
	})
	require.NoError(t, err)
	require.Equal(t, "correction: 15→12", count.QuantityRaw)

	// The audited prior makes the count reversible.
	advice, err := svc.ReversalAdvice(ctx, count.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, advice.QuantityDelta)
	require.True(t, advice.Approximate)
}

func TestSnapshotThroughService(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.PostMovement(ctx, MovementInput{
		ItemName: "cable", LocationName: "main",
		Operation: OpPurchaseIn, Quantity: 4, UnitPrice: 250, Actor: "sato",
	})
	require.NoError(t, err)

	rows, err := svc.Snapshot(ctx, time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.EqualValues(t, 4, rows[0].Quantity)
	require.EqualValues(t, 1000, rows[0].Value)
}

func TestReversalAdviceUnknownEvent(t *testing.T) {
	svc := newTestService(&memoryStore{})
	_, err := svc.ReversalAdvice(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrEventNotFound)
}
