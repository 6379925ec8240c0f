package survey

import (
	"goimpact/domain/core"
)

// Intensity of a reported activity session.
type Intensity int

const (
	IntensityLow Intensity = iota
	IntensityModerate
	IntensityHigh
)

// IntensityFromCode maps the questionnaire intensity answer: 1 high, 2 moderate, else low.
func IntensityFromCode(code int) Intensity {
	switch code {
	case 1:
		return IntensityHigh
	case 2:
		return IntensityModerate
	}
	return IntensityLow
}

func (i Intensity) String() string {
	switch i {
	case IntensityHigh:
		return "high"
	case IntensityModerate:
		return "moderate"
	}
	return "low"
}

// Session is one activity type's weekly answer set.
type Session struct {
	FrequencyCode int
	Minutes       float64
	Intensity     Intensity
}

// ActivityAnswers groups the three activity questions asked of every respondent.
type ActivityAnswers struct {
	Gym     Session
	Walking Session
	Sports  Session
}

// Respondent is one survey row after code mapping. Dimensions whose code could not be
// mapped are left unset and the respondent is excluded from groups on that dimension.
type Respondent struct {
	ID      string
	Market  core.Market
	Segment core.Segment
	Weight  float64

	Gender    core.Gender
	HasGender bool
	Age       core.AgeGroup
	HasAge    bool
	Income    core.IncomeLevel
	HasIncome bool

	// TierAccepts holds raw discount acceptance answers, shallow to deep.
	TierAccepts  []bool
	PriceBarrier bool

	Spend            float64
	HasSpend         bool
	LifeSatisfaction float64
	CommunityTrust   float64
	HasSocial        bool

	Activity ActivityAnswers

	// MappingErrors records codes that failed to map, for audit.
	MappingErrors []error
}

// GroupValue returns the label of the respondent on a dimension, or false when unset.
func (r Respondent) GroupValue(d core.Dimension) (string, bool) {
	switch d {
	case core.DimensionGender:
		return r.Gender.Label(), r.HasGender
	case core.DimensionAge:
		return r.Age.Label(), r.HasAge
	case core.DimensionIncome:
		return r.Income.Label(), r.HasIncome
	case core.DimensionMarket:
		return r.Market.Label(), r.Market.Valid()
	}
	return "", false
}

// GroupKey returns the respondent's key on a dimension.
func (r Respondent) GroupKey(d core.Dimension) (core.GroupKey, bool) {
	v, ok := r.GroupValue(d)
	if !ok {
		return core.GroupKey{}, false
	}
	return core.GroupKey{Market: r.Market, Dimension: d, Value: v}, true
}

// Filter returns respondents matching keep, preserving order.
func Filter(rs []Respondent, keep func(Respondent) bool) []Respondent {
	out := make([]Respondent, 0, len(rs))
	for _, r := range rs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// BySegment keeps respondents from one segment.
func BySegment(s core.Segment) func(Respondent) bool {
	return func(r Respondent) bool { return r.Segment == s }
}

// GroupBy partitions respondents by their key on d. Keys come back sorted.
func GroupBy(rs []Respondent, d core.Dimension) ([]core.GroupKey, map[core.GroupKey][]Respondent) {
	groups := make(map[core.GroupKey][]Respondent)
	var keys []core.GroupKey
	for _, r := range rs {
		k, ok := r.GroupKey(d)
		if !ok {
			continue
		}
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	SortKeys(keys)
	return keys, groups
}
