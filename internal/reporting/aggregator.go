package reporting

import (
	"sort"

	"github.com/stockbook/stockbook/internal/fiscal"
	"github.com/stockbook/stockbook/internal/ledger"
)

const (
	warnNegativeUsage = "derived usage is negative: movement history and count disagree"
	warnBookClamped   = "book quantity clamped to zero: outbound exceeds opening plus inbound"
)

// periodTotals accumulates the in-window movements of one position.
type periodTotals struct {
	inbound  int64
	outbound int64
	count    *ledger.Quantity
}

// BuildRows produces one reconciliation row per requested (location,
// item) pair for the period window. Events must cover everything up to
// the window end; the opening balance replays the prefix before the
// window, and in-window movements are totalled per pair.
func BuildRows(events []ledger.Event, master map[string]ledger.ItemAttributes, locs []LocationRef, itemNames []string, window fiscal.Window) []Row {
	openings := ledger.Replay(events, window.Start.Add(-1), nil)
	totals := collectTotals(events, window)

	rows := make([]Row, 0, len(locs)*len(itemNames))
	for _, loc := range locs {
		for _, item := range itemNames {
			key := ledger.Key{ItemName: item, LocationName: loc.Name}
			rows = append(rows, buildRow(loc, item, master[item], openings[key].Quantity, totals[key]))
		}
	}
	return rows
}

func collectTotals(events []ledger.Event, window fiscal.Window) map[ledger.Key]periodTotals {
	ordered := make([]ledger.Event, 0, len(events))
	for _, e := range events {
		if e.OccurredAt.IsZero() || e.OccurredAt.Before(window.Start) || e.OccurredAt.After(window.End) {
			continue
		}
		ordered = append(ordered, e)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurredAt.Before(ordered[j].OccurredAt)
	})

	totals := make(map[ledger.Key]periodTotals)
	for _, e := range ordered {
		key := ledger.Key{ItemName: e.ItemName, LocationName: e.LocationName}
		t := totals[key]
		q := ledger.DecodeQuantity(e.QuantityRaw)
		switch e.Operation.Direction() {
		case ledger.DirectionIn:
			t.inbound += absDelta(q)
		case ledger.DirectionOut:
			t.outbound += absDelta(q)
		case ledger.DirectionCount:
			// Later counts supersede earlier ones; the slice is in
			// replay order so the last one seen wins. A correction
			// whose body never parsed is not a count.
			if q.HasNew {
				count := q
				t.count = &count
			}
		}
		totals[key] = t
	}
	return totals
}

func buildRow(loc LocationRef, item string, attrs ledger.ItemAttributes, opening int64, t periodTotals) Row {
	row := Row{
		LocationCode: loc.Code,
		LocationName: loc.Name,
		Category:     attrs.Category,
		ItemCode:     attrs.Code,
		ItemName:     item,
		Opening:      opening,
		Inbound:      t.inbound,
	}

	if t.count != nil {
		row.HasCount = true
		row.Reported = t.count.New
		if t.count.Kind == ledger.QuantitySetAudited {
			row.Book = t.count.Prior
		}
	} else {
		book := opening + t.inbound - t.outbound
		if book < 0 {
			book = 0
			row.Warnings = append(row.Warnings, warnBookClamped)
		}
		row.Book = book
		row.Reported = book
	}

	row.Usage = opening + t.inbound - row.Book
	if row.Usage < 0 {
		row.Warnings = append(row.Warnings, warnNegativeUsage)
	}
	row.Variance = row.Reported - row.Book
	row.CarryForward = row.Book
	return row
}

func absDelta(q ledger.Quantity) int64 {
	if q.Kind != ledger.QuantityDelta {
		return 0
	}
	if q.Delta < 0 {
		return -q.Delta
	}
	return q.Delta
}
