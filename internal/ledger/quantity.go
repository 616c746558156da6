package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// The textual quantity encoding is a contract shared with every writer
// of the stock log. Delta prefixes, the correction marker and the arrow
// separator must not change.
const (
	correctionMarker = "correction"
	correctionArrow  = "→"
)

// QuantityKind tags the decoded form of a quantity field.
type QuantityKind int

const (
	// QuantityDelta is a signed relative movement.
	QuantityDelta QuantityKind = iota
	// QuantitySet is an absolute correction without a recorded prior.
	QuantitySet
	// QuantitySetAudited is an absolute correction carrying the prior
	// book quantity for audit.
	QuantitySetAudited
)

// Quantity is the in-memory form of the quantity field. The textual
// encoding exists only at the serialization boundary.
type Quantity struct {
	Kind  QuantityKind
	Delta int64
	Prior int64
	New   int64
	// HasNew distinguishes a parsed correction from the no-op marker a
	// malformed correction decodes to.
	HasNew bool
}

// DecodeQuantity parses a raw quantity field. It is total: malformed
// input decodes to a zero-effect form, never an error, so replay stays
// available over any log contents.
func DecodeQuantity(raw string) Quantity {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "+"):
		n, err := strconv.ParseInt(s[1:], 10, 64)
		if err != nil {
			return Quantity{Kind: QuantityDelta}
		}
		return Quantity{Kind: QuantityDelta, Delta: n}
	case strings.HasPrefix(s, "-"):
		n, err := strconv.ParseInt(s[1:], 10, 64)
		if err != nil {
			return Quantity{Kind: QuantityDelta}
		}
		return Quantity{Kind: QuantityDelta, Delta: -n}
	case strings.HasPrefix(s, correctionMarker):
		return decodeCorrection(s)
	}
	return Quantity{Kind: QuantityDelta}
}

func decodeCorrection(s string) Quantity {
	body := strings.TrimPrefix(s, correctionMarker)
	// Historical log rows contain both half- and full-width colons.
	body = strings.TrimPrefix(body, "：")
	body = strings.TrimPrefix(body, ":")
	body = strings.TrimSpace(body)

	if prior, next, ok := strings.Cut(body, correctionArrow); ok {
		p, errP := strconv.ParseInt(strings.TrimSpace(prior), 10, 64)
		n, errN := strconv.ParseInt(strings.TrimSpace(next), 10, 64)
		if errP == nil && errN == nil {
			return Quantity{Kind: QuantitySetAudited, Prior: p, New: n, HasNew: true}
		}
	}
	if n, err := strconv.ParseInt(body, 10, 64); err == nil {
		return Quantity{Kind: QuantitySet, New: n, HasNew: true}
	}
	// No-op marker: a correction whose body never parsed.
	return Quantity{Kind: QuantitySet}
}

// Encode renders the quantity back to its textual form. Writers must
// prefer the audited correction form whenever the prior book quantity
// is known; bare corrections cannot be reversed later.
func (q Quantity) Encode() string {
	switch q.Kind {
	case QuantitySetAudited:
		return fmt.Sprintf("%s: %d%s%d", correctionMarker, q.Prior, correctionArrow, q.New)
	case QuantitySet:
		if !q.HasNew {
			return correctionMarker + ":"
		}
		return fmt.Sprintf("%s: %d", correctionMarker, q.New)
	default:
		return fmt.Sprintf("%+d", q.Delta)
	}
}
