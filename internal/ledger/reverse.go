package ledger

import "errors"

// ErrNotReversible marks an event whose effect cannot be computed from
// the event alone. Callers must not treat it as a zero-delta reversal.
var ErrNotReversible = errors.New("ledger: event not reversible from its own record")

// Reversal is the delta to apply to the current position to undo one
// event. Approximate reversals restore quantity exactly but cannot
// restore value: the average cost at the original correction is gone.
type Reversal struct {
	QuantityDelta int64   `json:"quantity_delta"`
	ValueDelta    float64 `json:"value_delta"`
	Approximate   bool    `json:"approximate"`
}

// Reverse computes the compensation for retracting one logged event,
// given only the event itself. Bare corrections without an audited
// prior return ErrNotReversible.
func Reverse(e Event) (Reversal, error) {
	q := DecodeQuantity(e.QuantityRaw)
	switch q.Kind {
	case QuantityDelta:
		rev := Reversal{QuantityDelta: -q.Delta}
		switch e.Operation.Direction() {
		case DirectionIn:
			rev.ValueDelta = -e.Amount
		case DirectionOut:
			rev.ValueDelta = e.Amount
		}
		return rev, nil
	case QuantitySetAudited:
		return Reversal{QuantityDelta: q.Prior - q.New, Approximate: true}, nil
	}
	return Reversal{}, ErrNotReversible
}
