package elasticity

import (
	"fmt"
)

// Tier is one discount level offered to non-customers.
type Tier struct {
	Column   string  `json:"column" yaml:"column"`     // survey column holding the answer
	Discount float64 `json:"discount" yaml:"discount"` // fraction, 0.1 = 10%
	Label    string  `json:"label" yaml:"label"`       // price label as reported, e.g. "10%"
}

// DefaultTiers are the five questionnaire discount levels, shallow to deep.
func DefaultTiers() []Tier {
	return []Tier{
		{Column: "Q14a", Discount: 0.10, Label: "10%"},
		{Column: "Q14b", Discount: 0.20, Label: "20%"},
		{Column: "Q14c", Discount: 0.40, Label: "40%"},
		{Column: "Q14d", Discount: 0.60, Label: "60%"},
		{Column: "Q14e", Discount: 0.80, Label: "80%"},
	}
}

// ValidateTiers checks the tiers are non-empty and strictly increasing in discount.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("at least one discount tier is required")
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Discount <= tiers[i-1].Discount {
			return fmt.Errorf("tier %s (%.2f) does not deepen tier %s (%.2f)",
				tiers[i].Label, tiers[i].Discount, tiers[i-1].Label, tiers[i-1].Discount)
		}
	}
	return nil
}

// Propagate applies cumulative acceptance: accepting a shallower discount implies accepting
// every deeper one. Tiers are processed left to right; the input is not modified.
func Propagate(accepts []bool) []bool {
	out := make([]bool, len(accepts))
	copy(out, accepts)
	for i := 1; i < len(out); i++ {
		if out[i-1] {
			out[i] = true
		}
	}
	return out
}
