package core

import (
	"fmt"
	"strings"
)

// Market is a survey market. Codes follow the questionnaire's S1 column.
type Market int

const (
	MarketAustralia Market = iota + 1
	MarketCanada
	MarketGermany
	MarketIreland
	MarketJapan
	MarketSaudiArabia
	MarketNewZealand
	MarketSingapore
	MarketSpain
	MarketUSA
)

type marketInfo struct {
	label     string
	country   string // two-letter suffix of the income question column
	geography string // geography key used by the health and cost tables
	currency  string
}

var marketTable = map[Market]marketInfo{
	MarketAustralia:   {"Australia", "AU", "Australia", "AUD"},
	MarketCanada:      {"Canada", "CA", "Canada", "CAD"},
	MarketGermany:     {"Germany", "DE", "Germany", "EUR"},
	MarketIreland:     {"Ireland", "IE", "Ireland", "EUR"},
	MarketJapan:       {"Japan", "JP", "Japan", "JPY"},
	MarketSaudiArabia: {"KSA (Saudi Arabia)", "SA", "KSA", "SAR"},
	MarketNewZealand:  {"New Zealand", "NZ", "Newzealand", "NZD"},
	MarketSingapore:   {"Singapore", "SG", "Singapore", "SGD"},
	MarketSpain:       {"Spain", "ES", "Spain", "EUR"},
	MarketUSA:         {"USA (United States of America)", "US", "America", "USD"},
}

// Markets returns every market in code order.
func Markets() []Market {
	out := make([]Market, 0, len(marketTable))
	for m := MarketAustralia; m <= MarketUSA; m++ {
		out = append(out, m)
	}
	return out
}

// MarketFromCode maps an S1 survey code to a Market.
func MarketFromCode(code int) (Market, error) {
	m := Market(code)
	if _, ok := marketTable[m]; !ok {
		return 0, NewUnknownCodeError("market", code)
	}
	return m, nil
}

// ParseMarket accepts a market label, a health geography key, a country code or a
// scenario prefix such as "USA".
func ParseMarket(s string) (Market, error) {
	needle := strings.TrimSpace(strings.ToLower(s))
	for _, m := range Markets() {
		info := marketTable[m]
		if needle == strings.ToLower(info.label) ||
			needle == strings.ToLower(info.geography) ||
			needle == strings.ToLower(info.country) ||
			needle == strings.ToLower(m.ScenarioPrefix()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: market %q", ErrUnknownCode, s)
}

func (m Market) Label() string       { return marketTable[m].label }
func (m Market) CountryCode() string { return marketTable[m].country }
func (m Market) Geography() string   { return marketTable[m].geography }
func (m Market) Currency() string    { return marketTable[m].currency }
func (m Market) String() string      { return m.Label() }

// ScenarioPrefix is the upper-cased first three letters of the label.
func (m Market) ScenarioPrefix() string {
	prefix := strings.ToUpper(m.Label())
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return prefix
}

// Valid reports whether m is one of the enumerated markets.
func (m Market) Valid() bool {
	_, ok := marketTable[m]
	return ok
}

// Segment distinguishes customers from non-customers (dSEGMENT).
type Segment int

const (
	SegmentCustomer    Segment = 1
	SegmentNonCustomer Segment = 2
)

func SegmentFromCode(code int) (Segment, error) {
	switch Segment(code) {
	case SegmentCustomer, SegmentNonCustomer:
		return Segment(code), nil
	}
	return 0, NewUnknownCodeError("segment", code)
}

func (s Segment) String() string {
	if s == SegmentCustomer {
		return "customer"
	}
	return "non-customer"
}

// Gender follows the S4 column.
type Gender int

const (
	GenderMale Gender = iota + 1
	GenderFemale
	GenderOther
	GenderUndisclosed
)

var genderLabels = map[Gender]string{
	GenderMale:        "Male",
	GenderFemale:      "Female",
	GenderOther:       "Others",
	GenderUndisclosed: "Prefer not to answer",
}

func GenderFromCode(code int) (Gender, error) {
	g := Gender(code)
	if _, ok := genderLabels[g]; !ok {
		return 0, NewUnknownCodeError("gender", code)
	}
	return g, nil
}

func (g Gender) Label() string  { return genderLabels[g] }
func (g Gender) String() string { return g.Label() }

// HealthKey is the lower-case gender key used by the health reference tables.
func (g Gender) HealthKey() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "all"
	}
}

// Binary reports whether the gender is one of the two modelled in the health tables.
func (g Gender) Binary() bool {
	return g == GenderMale || g == GenderFemale
}

// AgeGroup buckets the dS3_RECODE age band.
type AgeGroup int

const (
	AgeYoungAdult AgeGroup = iota + 1
	AgeOlderAdult
)

var ageLabels = map[AgeGroup]string{
	AgeYoungAdult: "Young Adults (16-35)",
	AgeOlderAdult: "Old Adults (>35)",
}

func AgeGroupFromCode(code int) (AgeGroup, error) {
	switch code {
	case 2, 3:
		return AgeYoungAdult, nil
	case 4, 5, 6, 7:
		return AgeOlderAdult, nil
	}
	return 0, NewUnknownCodeError("age", code)
}

func (a AgeGroup) Label() string  { return ageLabels[a] }
func (a AgeGroup) String() string { return a.Label() }

// IncomeLevel buckets the market-specific S5_<CC> income band.
type IncomeLevel int

const (
	IncomeLow IncomeLevel = iota + 1
	IncomeMiddle
	IncomeHigh
	IncomeUndisclosed
)

var incomeLabels = map[IncomeLevel]string{
	IncomeLow:         "Low",
	IncomeMiddle:      "Middle",
	IncomeHigh:        "High",
	IncomeUndisclosed: "Prefer not to answer",
}

// incomeBands lists, per market, the first band code that counts as High. Band 1 is Low,
// bands between are Middle, and the last valid band is the table length.
var incomeBands = map[Market]struct{ highFrom, maxBand int }{
	MarketAustralia:   {7, 8},
	MarketCanada:      {7, 8},
	MarketGermany:     {6, 6},
	MarketIreland:     {7, 8},
	MarketJapan:       {5, 6},
	MarketSaudiArabia: {7, 8},
	MarketNewZealand:  {7, 8},
	MarketSingapore:   {5, 6},
	MarketSpain:       {6, 8},
	MarketUSA:         {7, 8},
}

const incomeUndisclosedCode = 99

func IncomeLevelFromCode(m Market, code int) (IncomeLevel, error) {
	if code == incomeUndisclosedCode {
		return IncomeUndisclosed, nil
	}
	bands, ok := incomeBands[m]
	if !ok || code < 1 || code > bands.maxBand {
		return 0, NewUnknownCodeError("income_"+m.CountryCode(), code)
	}
	switch {
	case code == 1:
		return IncomeLow, nil
	case code >= bands.highFrom:
		return IncomeHigh, nil
	default:
		return IncomeMiddle, nil
	}
}

func (l IncomeLevel) Label() string  { return incomeLabels[l] }
func (l IncomeLevel) String() string { return l.Label() }

// Dimension names the demographic cut a group is keyed by.
type Dimension string

const (
	DimensionGender Dimension = "gender"
	DimensionAge    Dimension = "age_group"
	DimensionIncome Dimension = "income_level"
	DimensionMarket Dimension = "market"
)

// ModelledValues lists the labels kept in scenario outputs for each dimension.
func ModelledValues(d Dimension) []string {
	switch d {
	case DimensionGender:
		return []string{GenderFemale.Label(), GenderMale.Label()}
	case DimensionAge:
		return []string{AgeYoungAdult.Label(), AgeOlderAdult.Label()}
	case DimensionIncome:
		return []string{IncomeLow.Label(), IncomeMiddle.Label(), IncomeHigh.Label()}
	}
	return nil
}

// GroupKey identifies one disjoint respondent group within a market.
type GroupKey struct {
	Market    Market
	Dimension Dimension
	Value     string
}

func (k GroupKey) String() string {
	if k.Dimension == DimensionMarket {
		return k.Market.Label()
	}
	return fmt.Sprintf("%s/%s=%s", k.Market.Label(), k.Dimension, k.Value)
}

// Less orders keys by market code then value.
func (k GroupKey) Less(o GroupKey) bool {
	if k.Market != o.Market {
		return k.Market < o.Market
	}
	if k.Dimension != o.Dimension {
		return k.Dimension < o.Dimension
	}
	return k.Value < o.Value
}
