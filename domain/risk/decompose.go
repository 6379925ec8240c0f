// Package risk splits a population-level risk into activity-level risks and derives the
// cases avoided by moving people out of inactivity.
package risk

import (
	"math"

	"goimpact/domain/core"
)

// Inputs describe one factor in one demographic cell.
type Inputs struct {
	PopulationRisk           float64 `json:"population_risk"`
	ActiveShare              float64 `json:"active_share"`
	FairlyActiveShare        float64 `json:"fairly_active_share"`
	RelativeRiskActive       float64 `json:"relative_risk_active"`
	RelativeRiskFairlyActive float64 `json:"relative_risk_fairly_active"`
	// ThreeWay is set when the factor models a fairly-active level.
	ThreeWay bool `json:"three_way"`
}

// Rates are the per-level risks implied by Inputs.
type Rates struct {
	Active       float64 `json:"active"`
	FairlyActive float64 `json:"fairly_active"`
	Inactive     float64 `json:"inactive"`
}

// DecomposeTwoWay solves P = (1-a)·Inactive + a·Active with Inactive = r·Active.
func DecomposeTwoWay(p, a, r float64) (Rates, error) {
	if err := checkCommon(p, r, "active"); err != nil {
		return Rates{}, err
	}
	if err := checkShare(a, "active"); err != nil {
		return Rates{}, err
	}

	denom := r*(1-a) + a
	if denom <= 0 {
		return Rates{}, core.NewRiskDomainError("degenerate denominator %g", denom)
	}
	active := p / denom
	out := Rates{Active: active, Inactive: active * r}
	return out, checkFinite(out)
}

// DecomposeThreeWay solves P = (1-a-f)·Inactive + a·Active + f·FairlyActive with
// Active = Inactive/r_a and FairlyActive = Inactive/r_f.
func DecomposeThreeWay(p, a, f, ra, rf float64) (Rates, error) {
	if err := checkCommon(p, ra, "active"); err != nil {
		return Rates{}, err
	}
	if rf <= 0 || math.IsNaN(rf) {
		return Rates{}, core.NewRiskDomainError("fairly-active relative risk %g", rf)
	}
	if err := checkShare(a, "active"); err != nil {
		return Rates{}, err
	}
	if err := checkShare(f, "fairly active"); err != nil {
		return Rates{}, err
	}
	if a+f >= 1 {
		return Rates{}, core.NewRiskDomainError("active %g + fairly active %g leaves no inactive share", a, f)
	}

	denom := (1 - a - f) + a/ra + f/rf
	if denom <= 0 {
		return Rates{}, core.NewRiskDomainError("degenerate denominator %g", denom)
	}
	inactive := p / denom
	out := Rates{
		Inactive:     inactive,
		Active:       inactive / ra,
		FairlyActive: inactive / rf,
	}
	return out, checkFinite(out)
}

// Decompose picks the three-way split when the inputs model a fairly-active level.
func Decompose(in Inputs) (Rates, error) {
	if in.ThreeWay {
		return DecomposeThreeWay(in.PopulationRisk, in.ActiveShare, in.FairlyActiveShare,
			in.RelativeRiskActive, in.RelativeRiskFairlyActive)
	}
	return DecomposeTwoWay(in.PopulationRisk, in.ActiveShare, in.RelativeRiskActive)
}

// Recompose weights the level risks back into a population risk.
func Recompose(in Inputs, r Rates) float64 {
	f := 0.0
	if in.ThreeWay {
		f = in.FairlyActiveShare
	}
	a := in.ActiveShare
	return (1-a-f)*r.Inactive + a*r.Active + f*r.FairlyActive
}

// Saved is the number of cases avoided among n newly active people.
type Saved struct {
	Active       float64 `json:"active"`
	FairlyActive float64 `json:"fairly_active"`
}

// Total sums both levels.
func (s Saved) Total() float64 { return s.Active + s.FairlyActive }

// CasesSaved is nActive·(Inactive − Active) and nFairly·(Inactive − FairlyActive), each level
// counting only the people moved into it. FairlyActive is zero when the rates carry no
// fairly-active risk.
func CasesSaved(r Rates, nActive, nFairly float64) Saved {
	out := Saved{Active: nActive * (r.Inactive - r.Active)}
	if r.FairlyActive > 0 {
		out.FairlyActive = nFairly * (r.Inactive - r.FairlyActive)
	}
	return out
}

func checkCommon(p, r float64, level string) error {
	if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return core.NewRiskDomainError("population risk %g", p)
	}
	if r <= 0 || math.IsNaN(r) {
		return core.NewRiskDomainError("%s relative risk %g", level, r)
	}
	return nil
}

// checkShare rejects shares outside [0,1). A share of 1 leaves no inactive population to
// anchor the relative risks on.
func checkShare(s float64, level string) error {
	if s < 0 || s >= 1 || math.IsNaN(s) {
		return core.NewRiskDomainError("%s share %g outside [0,1)", level, s)
	}
	return nil
}

func checkFinite(r Rates) error {
	for _, v := range []float64{r.Active, r.FairlyActive, r.Inactive} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewRiskDomainError("non-finite rate %g", v)
		}
	}
	return nil
}
