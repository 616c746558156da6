package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func ev(ts time.Time, item, loc string, op Operation, qty string, price float64) Event {
	return Event{
		OccurredAt:   ts,
		ItemName:     item,
		LocationName: loc,
		Operation:    op,
		QuantityRaw:  qty,
		UnitPrice:    price,
	}
}

func TestReplayMovingAverage(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{
		ev(base, "cable", "main", OpPurchaseIn, "+10", 100),
		ev(base.Add(time.Hour), "cable", "main", OpPurchaseIn, "+5", 130),
	}
	states := Replay(events, base.Add(2*time.Hour), nil)
	st := states[Key{ItemName: "cable", LocationName: "main"}]
	require.EqualValues(t, 15, st.Quantity)
	require.InDelta(t, 1650, st.Value, 0.001)
	require.InDelta(t, 110, st.AverageCost(), 0.001)
}

func TestReplayOutboundCostsAtAverage(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{
		ev(base, "cable", "main", OpPurchaseIn, "+4", 100),
		// The recorded price on an outbound event must be ignored.
		ev(base.Add(time.Hour), "cable", "main", OpIssueOut, "-2", 999),
	}
	states := Replay(events, base.Add(2*time.Hour), nil)
	st := states[Key{ItemName: "cable", LocationName: "main"}]
	require.EqualValues(t, 2, st.Quantity)
	require.InDelta(t, 200, st.Value, 0.001)
}

func TestReplayStocktakeKeepsAverage(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{
		ev(base, "cable", "main", OpPurchaseIn, "+10", 100),
		ev(base.Add(time.Hour), "cable", "main", OpStocktake, "correction: 10→7", 0),
	}
	states := Replay(events, base.Add(2*time.Hour), nil)
	st := states[Key{ItemName: "cable", LocationName: "main"}]
	require.EqualValues(t, 7, st.Quantity)
	require.InDelta(t, 700, st.Value, 0.001)
	require.InDelta(t, 100, st.AverageCost(), 0.001)
}

func TestReplayBareSetCorrection(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{
		ev(base, "cable", "main", OpPurchaseIn, "+10", 100),
		ev(base.Add(time.Hour), "cable", "main", OpStocktake, "correction: 4", 0),
	}
	states := Replay(events, base.Add(2*time.Hour), nil)
	st := states[Key{ItemName: "cable", LocationName: "main"}]
	require.EqualValues(t, 4, st.Quantity)
	require.InDelta(t, 400, st.Value, 0.001)
}

func TestReplayClampWritesOffValue(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{
		ev(base, "cable", "main", OpPurchaseIn, "+3", 100),
		ev(base.Add(time.Hour), "cable", "main", OpIssueOut, "-5", 0),
		// A later inbound starts from zero, not a negative carry.
		ev(base.Add(2*time.Hour), "cable", "main", OpPurchaseIn, "+2", 50),
	}
	states := Replay(events, base.Add(3*time.Hour), nil)
	st := states[Key{ItemName: "cable", LocationName: "main"}]
	require.EqualValues(t, 2, st.Quantity)
	require.InDelta(t, 100, st.Value, 0.001)

	mid := Replay(events, base.Add(90*time.Minute), nil)
	require.Equal(t, State{}, mid[Key{ItemName: "cable", LocationName: "main"}])
}

func TestReplaySortsBeforeFolding(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	ordered := []Event{
		ev(base, "cable", "main", OpPurchaseIn, "+10", 100),
		ev(base.Add(time.Hour), "cable", "main", OpPurchaseIn, "+10", 200),
		ev(base.Add(2*time.Hour), "cable", "main", OpIssueOut, "-5", 0),
	}
	shuffled := []Event{ordered[2], ordered[0], ordered[1]}

	want := Replay(ordered, base.Add(3*time.Hour), nil)
	got := Replay(shuffled, base.Add(3*time.Hour), nil)
	require.Equal(t, want, got)
}

func TestReplayDropsUnusableEvents(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{
		ev(base, "cable", "main", OpPurchaseIn, "+10", 100),
		ev(time.Time{}, "cable", "main", OpPurchaseIn, "+99", 100),
		ev(base.Add(time.Hour), "cable", "annex", OpPurchaseIn, "+4", 100),
		ev(base.Add(2*time.Hour), "cable", "main", Operation("AUDIT_NOTE"), "+1", 100),
		ev(base.Add(3*time.Hour), "cable", "main", OpPurchaseIn, "garbled", 100),
	}
	states := Replay(events, base.Add(4*time.Hour), []string{"main"})
	require.Len(t, states, 1)
	st := states[Key{ItemName: "cable", LocationName: "main"}]
	require.EqualValues(t, 10, st.Quantity)
}

func TestReplayCutoffIsInclusive(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{
		ev(base, "cable", "main", OpPurchaseIn, "+10", 100),
		ev(base.Add(time.Hour), "cable", "main", OpIssueOut, "-4", 0),
	}
	states := Replay(events, base.Add(time.Hour), nil)
	st := states[Key{ItemName: "cable", LocationName: "main"}]
	require.EqualValues(t, 6, st.Quantity)
}

func TestReplayConcurrentMatchesSequential(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	var events []Event
	items := []string{"cable", "bracket", "sensor"}
	locs := []string{"main", "annex"}
	for i := 0; i < 60; i++ {
		item := items[i%len(items)]
		loc := locs[i%len(locs)]
		if i%7 == 3 {
			events = append(events, ev(base.Add(time.Duration(i)*time.Minute), item, loc, OpIssueOut, "-2", 0))
			continue
		}
		events = append(events, ev(base.Add(time.Duration(i)*time.Minute), item, loc, OpPurchaseIn, "+3", float64(50+i)))
	}

	want := Replay(events, base.Add(2*time.Hour), nil)
	got, err := ReplayConcurrent(context.Background(), events, base.Add(2*time.Hour), nil, 4)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
