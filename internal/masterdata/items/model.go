package items

import "time"

// Item represents an item-master entry. The ledger reads these only to
// enrich snapshot rows; valuation never depends on the standard price.
type Item struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Manufacturer  string    `json:"manufacturer"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory"`
	Unit          string    `json:"unit"`
	StandardPrice float64   `json:"standard_price"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
