// Package reporting reconciles period-close stock figures: the book
// quantity derived from movement history, the physically counted
// quantity, and the raw inbound/outbound totals. Discrepancies are
// surfaced on the row, never resolved silently.
package reporting

// LocationRef carries the location identity printed on report rows.
type LocationRef struct {
	Code string
	Name string
}

// Row is one (location, item) line of a period-close report.
type Row struct {
	LocationCode string `json:"location_code"`
	LocationName string `json:"location_name"`
	Category     string `json:"category"`
	ItemCode     string `json:"item_code"`
	ItemName     string `json:"item_name"`
	// Opening is the carry-forward from the previous period.
	Opening int64 `json:"opening"`
	// Usage is reverse-derived (opening + inbound - book), a
	// reconciliation figure rather than a measured quantity. Negative
	// usage signals inconsistent inputs and is reported as-is.
	Usage   int64 `json:"usage"`
	Inbound int64 `json:"inbound"`
	// Book is the ledger-derived quantity, or the audited prior locked
	// by the period's latest stocktake.
	Book     int64 `json:"book"`
	Reported int64 `json:"reported"`
	Variance int64 `json:"variance"`
	// CarryForward feeds the next period's opening.
	CarryForward int64    `json:"carry_forward"`
	HasCount     bool     `json:"has_count"`
	Warnings     []string `json:"warnings,omitempty"`
}
