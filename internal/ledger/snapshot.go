package ledger

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SnapshotRow is one stock position as of a cutoff, joined with
// item-master attributes.
type SnapshotRow struct {
	ItemName        string `json:"item_name"`
	Manufacturer    string `json:"manufacturer"`
	Category        string `json:"category"`
	Subcategory     string `json:"subcategory"`
	LocationName    string `json:"location_name"`
	Quantity        int64  `json:"quantity"`
	Unit            string `json:"unit"`
	AverageUnitCost int64  `json:"average_unit_cost"`
	Value           int64  `json:"value"`
}

// Snapshot replays the log to cutoff and emits one row per position
// still holding stock. Items missing from the master carry empty
// attributes rather than failing the snapshot. Row order is collated
// on item name; item names in the log are predominantly Japanese.
func Snapshot(events []Event, master map[string]ItemAttributes, cutoff time.Time, locations []string) []SnapshotRow {
	return SnapshotRows(Replay(events, cutoff, locations), master)
}

// SnapshotRows renders already replayed states as snapshot rows.
func SnapshotRows(states map[Key]State, master map[string]ItemAttributes) []SnapshotRow {
	rows := make([]SnapshotRow, 0, len(states))
	for key, st := range states {
		if st.Quantity <= 0 {
			continue
		}
		attrs := master[key.ItemName]
		rows = append(rows, SnapshotRow{
			ItemName:        key.ItemName,
			Manufacturer:    attrs.Manufacturer,
			Category:        attrs.Category,
			Subcategory:     attrs.Subcategory,
			LocationName:    key.LocationName,
			Quantity:        st.Quantity,
			Unit:            attrs.Unit,
			AverageUnitCost: int64(st.AverageCost()),
			Value:           int64(st.Value),
		})
	}

	coll := collate.New(language.Japanese)
	sort.Slice(rows, func(i, j int) bool {
		if c := coll.CompareString(rows[i].ItemName, rows[j].ItemName); c != 0 {
			return c < 0
		}
		return coll.CompareString(rows[i].LocationName, rows[j].LocationName) < 0
	})
	return rows
}
