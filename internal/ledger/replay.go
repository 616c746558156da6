package ledger

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Replay folds the event log into per-(item, location) positions as of
// cutoff (inclusive). Events with a zero timestamp are dropped, and
// when locations is non-empty only those locations participate. The
// fold is pure: it owns no state beyond its return value, so callers
// decide what, if anything, to persist or cache.
func Replay(events []Event, cutoff time.Time, locations []string) map[Key]State {
	ordered := filterAndSort(events, cutoff, locations)
	states := make(map[Key]State)
	for _, e := range ordered {
		apply(states, e)
	}
	return states
}

// ReplayConcurrent is Replay sharded by key: each position's
// subsequence folds on its own worker, results merge without locking.
// The answer is identical to Replay for any input.
func ReplayConcurrent(ctx context.Context, events []Event, cutoff time.Time, locations []string, workers int) (map[Key]State, error) {
	ordered := filterAndSort(events, cutoff, locations)

	shards := make(map[Key][]Event)
	keys := make([]Key, 0)
	for _, e := range ordered {
		k := Key{ItemName: e.ItemName, LocationName: e.LocationName}
		if _, ok := shards[k]; !ok {
			keys = append(keys, k)
		}
		shards[k] = append(shards[k], e)
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]State, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, k := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partial := make(map[Key]State, 1)
			for _, e := range shards[k] {
				apply(partial, e)
			}
			results[i] = partial[k]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	states := make(map[Key]State, len(keys))
	for i, k := range keys {
		states[k] = results[i]
	}
	return states, nil
}

// filterAndSort keeps events at or before cutoff in the given
// locations, ordered by timestamp. The sort is stable so log order
// breaks ties; average cost depends on this ordering.
func filterAndSort(events []Event, cutoff time.Time, locations []string) []Event {
	var allowed map[string]struct{}
	if len(locations) > 0 {
		allowed = make(map[string]struct{}, len(locations))
		for _, loc := range locations {
			allowed[loc] = struct{}{}
		}
	}

	ordered := make([]Event, 0, len(events))
	for _, e := range events {
		if e.OccurredAt.IsZero() || e.OccurredAt.After(cutoff) {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[e.LocationName]; !ok {
				continue
			}
		}
		ordered = append(ordered, e)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurredAt.Before(ordered[j].OccurredAt)
	})
	return ordered
}

// apply advances one position by one event. No event ever aborts the
// fold: malformed quantities decode to zero-effect forms and unknown
// operations carry DirectionNone.
func apply(states map[Key]State, e Event) {
	key := Key{ItemName: e.ItemName, LocationName: e.LocationName}
	st := states[key]
	avgBefore := st.AverageCost()
	q := DecodeQuantity(e.QuantityRaw)

	switch e.Operation.Direction() {
	case DirectionIn:
		var delta int64
		if q.Kind == QuantityDelta {
			delta = q.Delta
		}
		if delta < 0 {
			delta = -delta
		}
		st.Quantity += delta
		st.Value += float64(delta) * e.UnitPrice
	case DirectionOut:
		var out int64
		if q.Kind == QuantityDelta {
			out = q.Delta
		}
		if out < 0 {
			out = -out
		}
		// Outbound always costs at the moving average before the
		// movement; any price recorded on the event is informational.
		st.Quantity -= out
		st.Value -= float64(out) * avgBefore
	case DirectionCount:
		switch q.Kind {
		case QuantitySetAudited:
			st.Quantity = q.New
			st.Value = float64(q.New) * avgBefore
		case QuantitySet:
			if q.HasNew {
				st.Quantity = q.New
				st.Value = float64(q.New) * avgBefore
			}
		}
	}

	// Over-depletion and negative corrections write the position off
	// entirely. The accumulated cost basis is not carried.
	if st.Quantity <= 0 {
		st = State{}
	}
	states[key] = st
}
