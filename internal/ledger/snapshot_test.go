package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSnapshotJoinsMasterAttributes(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{
		ev(base, "cable", "main", OpPurchaseIn, "+10", 100),
		ev(base.Add(time.Hour), "cable", "main", OpPurchaseIn, "+5", 130),
	}
	master := map[string]ItemAttributes{
		"cable": {Code: "C-001", Manufacturer: "Acme", Category: "Electrical", Subcategory: "Wiring", Unit: "m"},
	}

	rows := Snapshot(events, master, base.Add(2*time.Hour), nil)
	require.Len(t, rows, 1)
	row := rows[0]
	require.Equal(t, "cable", row.ItemName)
	require.Equal(t, "Acme", row.Manufacturer)
	require.Equal(t, "Electrical", row.Category)
	require.Equal(t, "Wiring", row.Subcategory)
	require.Equal(t, "m", row.Unit)
	require.EqualValues(t, 15, row.Quantity)
	require.EqualValues(t, 110, row.AverageUnitCost)
	require.EqualValues(t, 1650, row.Value)
}

func TestSnapshotUnknownItemHasEmptyAttributes(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{ev(base, "mystery", "main", OpPurchaseIn, "+2", 10)}

	rows := Snapshot(events, map[string]ItemAttributes{}, base.Add(time.Hour), nil)
	require.Len(t, rows, 1)
	require.Equal(t, "mystery", rows[0].ItemName)
	require.Empty(t, rows[0].Manufacturer)
	require.Empty(t, rows[0].Unit)
}

func TestSnapshotDropsEmptyPositions(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{
		ev(base, "cable", "main", OpPurchaseIn, "+3", 100),
		ev(base.Add(time.Hour), "cable", "main", OpIssueOut, "-3", 0),
		ev(base, "bracket", "main", OpPurchaseIn, "+1", 40),
	}
	rows := Snapshot(events, nil, base.Add(2*time.Hour), nil)
	require.Len(t, rows, 1)
	require.Equal(t, "bracket", rows[0].ItemName)
}

func TestSnapshotRowOrderIsDeterministic(t *testing.T) {
	base := at(t, "2025-04-01T09:00:00Z")
	events := []Event{
		ev(base, "sensor", "annex", OpPurchaseIn, "+1", 10),
		ev(base, "bracket", "main", OpPurchaseIn, "+1", 10),
		ev(base, "bracket", "annex", OpPurchaseIn, "+1", 10),
	}
	rows := Snapshot(events, nil, base.Add(time.Hour), nil)
	require.Len(t, rows, 3)
	require.Equal(t, "bracket", rows[0].ItemName)
	require.Equal(t, "annex", rows[0].LocationName)
	require.Equal(t, "bracket", rows[1].ItemName)
	require.Equal(t, "main", rows[1].LocationName)
	require.Equal(t, "sensor", rows[2].ItemName)
}
