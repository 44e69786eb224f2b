package cart

import (
	"encoding/json"
	"fmt"
	"sort"
)

// PolicyKind discriminates the quantity policy variants.
type PolicyKind string

const (
	PolicyDiscrete PolicyKind = "discrete"
	PolicyRange    PolicyKind = "range"
)

// QuantityPolicy describes how a product's purchasable quantity is chosen:
// either from a discrete allowed set or from a continuous min/max/step range.
// It is advisory catalog metadata carried through for storefront UIs; the
// cart engine never enforces it.
type QuantityPolicy struct {
	kind    PolicyKind
	allowed []int
	min     int
	max     int
	step    int
}

// DiscretePolicy builds a policy restricted to an explicit quantity set.
func DiscretePolicy(allowed ...int) QuantityPolicy {
	set := map[int]struct{}{}
	cleaned := make([]int, 0, len(allowed))
	for _, qty := range allowed {
		if qty < 1 {
			continue
		}
		if _, seen := set[qty]; seen {
			continue
		}
		set[qty] = struct{}{}
		cleaned = append(cleaned, qty)
	}
	sort.Ints(cleaned)
	return QuantityPolicy{kind: PolicyDiscrete, allowed: cleaned}
}

// RangePolicy builds a policy allowing min..max in increments of step.
func RangePolicy(min, max, step int) QuantityPolicy {
	if step < 1 {
		step = 1
	}
	return QuantityPolicy{kind: PolicyRange, min: min, max: max, step: step}
}

// Kind reports the variant.
func (p QuantityPolicy) Kind() PolicyKind {
	return p.kind
}

// Allowed returns the discrete quantity set, nil for range policies.
func (p QuantityPolicy) Allowed() []int {
	if p.kind != PolicyDiscrete {
		return nil
	}
	out := make([]int, len(p.allowed))
	copy(out, p.allowed)
	return out
}

// Bounds returns min, max and step for range policies.
func (p QuantityPolicy) Bounds() (min, max, step int) {
	return p.min, p.max, p.step
}

// Allows reports whether the policy would accept the quantity. Advisory only.
func (p QuantityPolicy) Allows(qty int) bool {
	switch p.kind {
	case PolicyDiscrete:
		for _, allowed := range p.allowed {
			if allowed == qty {
				return true
			}
		}
		return false
	case PolicyRange:
		if qty < p.min || qty > p.max {
			return false
		}
		return (qty-p.min)%p.step == 0
	default:
		return true
	}
}

type quantityPolicyWire struct {
	Kind    PolicyKind `json:"kind"`
	Allowed []int      `json:"allowed,omitempty"`
	Min     int        `json:"min,omitempty"`
	Max     int        `json:"max,omitempty"`
	Step    int        `json:"step,omitempty"`
}

func (p QuantityPolicy) MarshalJSON() ([]byte, error) {
	wire := quantityPolicyWire{Kind: p.kind}
	switch p.kind {
	case PolicyDiscrete:
		wire.Allowed = p.allowed
	case PolicyRange:
		wire.Min = p.min
		wire.Max = p.max
		wire.Step = p.step
	}
	return json.Marshal(wire)
}

func (p *QuantityPolicy) UnmarshalJSON(data []byte) error {
	var wire quantityPolicyWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Kind {
	case PolicyDiscrete:
		*p = DiscretePolicy(wire.Allowed...)
	case PolicyRange:
		*p = RangePolicy(wire.Min, wire.Max, wire.Step)
	default:
		return fmt.Errorf("unknown quantity policy kind %q", wire.Kind)
	}
	return nil
}
