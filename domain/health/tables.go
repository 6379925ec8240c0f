// Package health turns newly active people into avoided cases, deaths and DALYs per health
// factor and prices the avoided cases with normalized cost-per-case figures.
package health

import (
	"goimpact/domain/costs"
	"goimpact/domain/lookup"
)

// Activity level labels used by the reference tables.
const (
	LevelActive       = "active"
	LevelFairlyActive = "fairly active"
)

// DefaultFactors are the adult health conditions modelled by default.
func DefaultFactors() []string {
	return []string{
		"coronary heart disease",
		"anxiety",
		"depression",
		"stroke",
		"diabetes (type 2)",
		"breast cancer",
		"endometrial uterine cancer",
		"colon cancer",
		"alzheimer and other dementia",
		"osteoporosis",
	}
}

// RelativeRisk is one row of the relative risk table.
type RelativeRisk struct {
	Factor        string  `json:"factor"`
	AgeGroup      string  `json:"age_group"`
	Gender        string  `json:"gender"`
	Geography     string  `json:"geography"`
	ActivityLevel string  `json:"activity_level"`
	Value         float64 `json:"relative_risk"`
}

func (r RelativeRisk) LookupScope() lookup.Scope {
	return lookup.Scope{Factor: r.Factor, AgeGroup: r.AgeGroup, ActivityLevel: r.ActivityLevel, Gender: r.Gender, Geography: r.Geography}
}

// PopulationRisk is a population rate expressed per Per people.
type PopulationRisk struct {
	Factor    string  `json:"factor"`
	AgeGroup  string  `json:"age_group"`
	Gender    string  `json:"gender"`
	Geography string  `json:"geography"`
	Rate      float64 `json:"population_rate"`
	Per       float64 `json:"rate_per"`
}

func (p PopulationRisk) LookupScope() lookup.Scope {
	return lookup.Scope{Factor: p.Factor, AgeGroup: p.AgeGroup, Gender: p.Gender, Geography: p.Geography}
}

// Probability is Rate/Per.
func (p PopulationRisk) Probability() float64 {
	if p.Per == 0 {
		return p.Rate
	}
	return p.Rate / p.Per
}

// ActivityLevel is the share of a population at an activity level.
type ActivityLevel struct {
	AgeGroup      string  `json:"age_group"`
	Gender        string  `json:"gender"`
	Geography     string  `json:"geography"`
	ActivityLevel string  `json:"activity_level"`
	Rate          float64 `json:"activity_rate"`
}

func (a ActivityLevel) LookupScope() lookup.Scope {
	return lookup.Scope{AgeGroup: a.AgeGroup, ActivityLevel: a.ActivityLevel, Gender: a.Gender, Geography: a.Geography}
}

// Tables bundle every reference table the calculator reads.
type Tables struct {
	RelativeRisks  []RelativeRisk
	Cases          []PopulationRisk
	Mortality      []PopulationRisk
	DALYs          []PopulationRisk
	ActivityLevels []ActivityLevel
	Costs          []costs.Figure
}
