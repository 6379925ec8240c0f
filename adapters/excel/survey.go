package excel

import (
	"fmt"

	"goimpact/domain/core"
	"goimpact/domain/survey"
)

// ActivityColumns name the frequency, duration and intensity answers per activity type.
type ActivityColumns struct {
	GymFreq, GymDuration, GymIntensity             string
	WalkingFreq, WalkingDuration, WalkingIntensity string
	SportsFreq, SportsDuration, SportsIntensity    string
}

// SurveyColumns maps questionnaire columns to respondent fields.
type SurveyColumns struct {
	ID               string
	Market           string
	Segment          string
	Gender           string
	Age              string
	IncomePrefix     string // suffixed with the market's country code, e.g. S5_AU
	Weight           string
	Tiers            []string
	PriceBarrier     string
	Spend            string
	LifeSatisfaction string
	CommunityTrust   string
	Customer         ActivityColumns
	NonCustomer      ActivityColumns
}

// DefaultSurveyColumns is the questionnaire layout for the given tier columns.
func DefaultSurveyColumns(tiers []string) SurveyColumns {
	return SurveyColumns{
		ID:               "uuid",
		Market:           "S1",
		Segment:          "dSEGMENT",
		Gender:           "S4",
		Age:              "dS3_RECODE",
		IncomePrefix:     "S5_",
		Weight:           "WEIGHT",
		Tiers:            tiers,
		PriceBarrier:     "Section_B_Q13r5",
		Spend:            "Q2r1",
		LifeSatisfaction: "S6",
		CommunityTrust:   "S7",
		Customer: ActivityColumns{
			GymFreq: "Q4", GymDuration: "Q5r1", GymIntensity: "Q6",
			WalkingFreq: "Q9", WalkingDuration: "Q10r1", WalkingIntensity: "Q11",
			SportsFreq: "Q12", SportsDuration: "Q13r1", SportsIntensity: "Q14",
		},
		NonCustomer: ActivityColumns{
			GymFreq: "Section_B_Q2", GymDuration: "Section_B_Q3r1", GymIntensity: "Section_B_Q4",
			WalkingFreq: "Section_B_Q7", WalkingDuration: "Section_B_Q8r1", WalkingIntensity: "Section_B_Q9",
			SportsFreq: "Section_B_Q10", SportsDuration: "Section_B_Q11r1", SportsIntensity: "Section_B_Q12",
		},
	}
}

// LoadRespondents maps survey rows to respondents. Rows without a valid market, segment or
// weight are skipped and reported; unknown demographic codes only unset that dimension.
func LoadRespondents(data *ExcelData, cols SurveyColumns) ([]survey.Respondent, []error) {
	if err := data.Require(cols.Market, cols.Segment, cols.Weight); err != nil {
		return nil, []error{err}
	}

	var out []survey.Respondent
	var skipped []error
	for i, row := range data.Rows {
		r, err := respondentFrom(row, cols)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("survey row %d: %w", i+2, err))
			continue
		}
		out = append(out, r)
	}
	return out, skipped
}

func respondentFrom(row RawRowData, cols SurveyColumns) (survey.Respondent, error) {
	var r survey.Respondent
	r.ID = row.String(cols.ID)

	code, ok := row.Int(cols.Market)
	if !ok {
		return r, fmt.Errorf("market code %q", row.String(cols.Market))
	}
	m, err := core.MarketFromCode(code)
	if err != nil {
		return r, err
	}
	r.Market = m

	code, ok = row.Int(cols.Segment)
	if !ok {
		return r, fmt.Errorf("segment code %q", row.String(cols.Segment))
	}
	if r.Segment, err = core.SegmentFromCode(code); err != nil {
		return r, err
	}

	w, ok := row.Float(cols.Weight)
	if !ok || w < 0 {
		return r, fmt.Errorf("%w: %q", core.ErrNegativeWeight, row.String(cols.Weight))
	}
	r.Weight = w

	if code, ok := row.Int(cols.Gender); ok {
		if g, err := core.GenderFromCode(code); err == nil {
			r.Gender, r.HasGender = g, true
		} else {
			r.MappingErrors = append(r.MappingErrors, err)
		}
	}
	if code, ok := row.Int(cols.Age); ok {
		if a, err := core.AgeGroupFromCode(code); err == nil {
			r.Age, r.HasAge = a, true
		} else {
			r.MappingErrors = append(r.MappingErrors, err)
		}
	}
	if code, ok := row.Int(cols.IncomePrefix + m.CountryCode()); ok {
		if l, err := core.IncomeLevelFromCode(m, code); err == nil {
			r.Income, r.HasIncome = l, true
		} else {
			r.MappingErrors = append(r.MappingErrors, err)
		}
	}

	r.TierAccepts = make([]bool, len(cols.Tiers))
	for i, c := range cols.Tiers {
		v, _ := row.Int(c)
		r.TierAccepts[i] = v == 1
	}
	r.PriceBarrier = row.Present(cols.PriceBarrier)

	if spend, ok := row.Float(cols.Spend); ok {
		r.Spend, r.HasSpend = spend, true
	}
	s6, ok6 := row.Float(cols.LifeSatisfaction)
	s7, ok7 := row.Float(cols.CommunityTrust)
	if ok6 && ok7 {
		r.LifeSatisfaction, r.CommunityTrust, r.HasSocial = s6, s7, true
	}

	ac := cols.NonCustomer
	if r.Segment == core.SegmentCustomer {
		ac = cols.Customer
	}
	r.Activity = survey.ActivityAnswers{
		Gym:     session(row, ac.GymFreq, ac.GymDuration, ac.GymIntensity),
		Walking: session(row, ac.WalkingFreq, ac.WalkingDuration, ac.WalkingIntensity),
		Sports:  session(row, ac.SportsFreq, ac.SportsDuration, ac.SportsIntensity),
	}
	return r, nil
}

func session(row RawRowData, freq, duration, intensity string) survey.Session {
	f, _ := row.Int(freq)
	d, _ := row.Float(duration)
	i, _ := row.Int(intensity)
	return survey.Session{FrequencyCode: f, Minutes: d, Intensity: survey.IntensityFromCode(i)}
}
