package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Operation enumerates supported stock movements.
type Operation string

const (
	// OpPurchaseIn records goods received from a supplier.
	OpPurchaseIn Operation = "PURCHASE_IN"
	// OpTransferIn records goods arriving from another location.
	OpTransferIn Operation = "TRANSFER_IN"
	// OpReturnIn records goods returned into stock.
	OpReturnIn Operation = "RETURN_IN"
	// OpIssueOut records goods issued for internal use.
	OpIssueOut Operation = "ISSUE_OUT"
	// OpTransferOut records goods leaving for another location.
	OpTransferOut Operation = "TRANSFER_OUT"
	// OpReturnOut records goods sent back to a supplier.
	OpReturnOut Operation = "RETURN_OUT"
	// OpCustomerOut records goods shipped to a customer site.
	OpCustomerOut Operation = "CUSTOMER_OUT"
	// OpStocktake records a physical count correction.
	OpStocktake Operation = "STOCKTAKE"
)

// Direction classifies how an operation moves quantity.
type Direction int

const (
	// DirectionNone means the operation has no ledger effect.
	DirectionNone Direction = iota
	// DirectionIn increases quantity at the recorded unit price.
	DirectionIn
	// DirectionOut decreases quantity at the moving average cost.
	DirectionOut
	// DirectionCount replaces quantity, preserving the average cost.
	DirectionCount
)

// directions is the single place a new operation kind gets wired into
// the costing rules.
var directions = map[Operation]Direction{
	OpPurchaseIn:  DirectionIn,
	OpTransferIn:  DirectionIn,
	OpReturnIn:    DirectionIn,
	OpIssueOut:    DirectionOut,
	OpTransferOut: DirectionOut,
	OpReturnOut:   DirectionOut,
	OpCustomerOut: DirectionOut,
	OpStocktake:   DirectionCount,
}

// Direction returns the costing direction for the operation. Unknown
// operations map to DirectionNone and replay as no-ops.
func (op Operation) Direction() Direction {
	return directions[op]
}

// Valid reports whether the operation is one of the closed set.
func (op Operation) Valid() bool {
	_, ok := directions[op]
	return ok
}

// Event is one immutable row of the append-only stock log. Corrections
// are new events; rows are never rewritten.
type Event struct {
	ID           uuid.UUID
	OccurredAt   time.Time
	ItemName     string
	LocationName string
	Operation    Operation
	QuantityRaw  string
	UnitPrice    float64
	Amount       float64
	Counterparty string
	Note         string
	Actor        string
}

// Key identifies one stock position.
type Key struct {
	ItemName     string
	LocationName string
}

// State is the replayed position for a key: on-hand quantity and its
// monetary value under moving weighted-average costing.
type State struct {
	Quantity int64
	Value    float64
}

// AverageCost returns value per unit, zero on an empty position.
func (s State) AverageCost() float64 {
	if s.Quantity <= 0 {
		return 0
	}
	return s.Value / float64(s.Quantity)
}

// ItemAttributes carries the item-master fields joined onto snapshot
// rows. The ledger never writes these.
type ItemAttributes struct {
	Code          string
	Manufacturer  string
	Category      string
	Subcategory   string
	Unit          string
	StandardPrice float64
}
