package excel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goimpact/domain/core"
	"goimpact/domain/survey"
	"goimpact/internal/report"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func readCSV(t *testing.T, lines ...string) *ExcelData {
	t.Helper()
	data, err := NewDataReader(writeCSV(t, "data.csv", lines...), zerolog.Nop()).ReadData()
	require.NoError(t, err)
	return data
}

func TestReadCSVDropsBlankRowsAndBOM(t *testing.T) {
	data := readCSV(t,
		"\ufeffa,b",
		"1,2",
		",",
		"3,4",
	)
	assert.Equal(t, []string{"a", "b"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "3", data.Rows[1]["a"])
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv"), zerolog.Nop()).ReadData()
	assert.Error(t, err)
}

func TestRowAccessors(t *testing.T) {
	row := RawRowData{"code": "2.0", "frac": "2.5", "big": "1,200", "empty": " ", "nan": "NaN", "inf": "+Inf", "flag": "Yes"}

	v, ok := row.Int("code")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = row.Int("frac")
	assert.False(t, ok)

	f, ok := row.Float("big")
	assert.True(t, ok)
	assert.Equal(t, 1200.0, f)

	_, ok = row.Float("inf")
	assert.False(t, ok)
	_, ok = row.Float("nan")
	assert.False(t, ok)

	assert.False(t, row.Present("empty"))
	assert.False(t, row.Present("nan"))
	assert.False(t, row.Present("missing"))

	b, ok := row.Bool("flag")
	assert.True(t, ok)
	assert.True(t, b)
}

func TestLoadRespondents(t *testing.T) {
	data := readCSV(t,
		"uuid,S1,dSEGMENT,S4,dS3_RECODE,S5_AU,WEIGHT,Q14a,Q14b,Section_B_Q13r5,Q2r1,S6,S7,Q4,Q5r1,Q6,Section_B_Q2,Section_B_Q3r1,Section_B_Q4",
		"r1,1,1,2,3,7,1.5,,,,40,8,7,4,60,1,,,",
		"r2,1,2,9,5,3,0.5,2,1,1,,,,,,,3,30,2",
		"r3,42,1,1,3,1,1,,,,,,,,,,,,",
		"r4,1,2,1,3,1,-1,,,,,,,,,,,,",
	)
	cols := DefaultSurveyColumns([]string{"Q14a", "Q14b"})

	rs, skipped := LoadRespondents(data, cols)
	require.Len(t, rs, 2)
	assert.Len(t, skipped, 2)

	cust := rs[0]
	assert.Equal(t, core.MarketAustralia, cust.Market)
	assert.Equal(t, core.SegmentCustomer, cust.Segment)
	assert.True(t, cust.HasGender)
	assert.Equal(t, core.GenderFemale, cust.Gender)
	assert.Equal(t, core.AgeYoungAdult, cust.Age)
	assert.Equal(t, core.IncomeHigh, cust.Income)
	assert.True(t, cust.HasSpend)
	assert.Equal(t, 40.0, cust.Spend)
	assert.True(t, cust.HasSocial)
	assert.Equal(t, survey.Session{FrequencyCode: 4, Minutes: 60, Intensity: survey.IntensityHigh}, cust.Activity.Gym)
	assert.Equal(t, []bool{false, false}, cust.TierAccepts)

	non := rs[1]
	assert.Equal(t, core.SegmentNonCustomer, non.Segment)
	assert.False(t, non.HasGender)
	assert.Len(t, non.MappingErrors, 1)
	assert.Equal(t, core.AgeOlderAdult, non.Age)
	assert.Equal(t, []bool{false, true}, non.TierAccepts)
	assert.True(t, non.PriceBarrier)
	assert.False(t, non.HasSpend)
	assert.Equal(t, survey.Session{FrequencyCode: 3, Minutes: 30, Intensity: survey.IntensityModerate}, non.Activity.Gym)
}

func TestLoadRespondentsMissingColumns(t *testing.T) {
	data := readCSV(t, "S1,WEIGHT", "1,1")
	rs, errs := LoadRespondents(data, DefaultSurveyColumns(nil))
	assert.Nil(t, rs)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "dSEGMENT")
}

func TestLoadReferenceTables(t *testing.T) {
	rr, err := LoadRelativeRisks(readCSV(t,
		"factor,age_group,gender,geography,activity_level,relative_risk",
		"stroke,adult,all,england,active,1.5",
	))
	require.NoError(t, err)
	assert.Equal(t, 1.5, rr[0].Value)
	assert.Equal(t, "active", rr[0].ActivityLevel)

	pr, err := LoadPopulationRisks(readCSV(t,
		"factor,age_group,gender,geography,population_rate,rate_per",
		"stroke,adult,all,global,120,100000",
		"anxiety,adult,all,global,0.01,",
	))
	require.NoError(t, err)
	assert.InDelta(t, 0.0012, pr[0].Probability(), 1e-12)
	assert.Equal(t, 1.0, pr[1].Per)

	_, err = LoadActivityLevels(readCSV(t,
		"age_group,gender,geography,activity_level,activity_rate",
		"adult,all,england,active,abc",
	))
	assert.Error(t, err)

	recs, err := LoadCostRecords(readCSV(t,
		"factor,age_group,gender,category,direct,cost_per_case_unflated,base_year",
		"stroke,adult,all,health,TRUE,1000,2019",
		"stroke,adult,all,health,false,500,",
	))
	require.NoError(t, err)
	assert.True(t, recs[0].Direct)
	assert.Equal(t, 2019, recs[0].BaseYear)
	assert.Equal(t, 0, recs[1].BaseYear)
}

func TestLoadYearTables(t *testing.T) {
	cpi, err := LoadCPI(readCSV(t,
		"country,2019,2024",
		"Australia,100,120",
		"Spain,,110",
	))
	require.NoError(t, err)
	v, ok := cpi.Value("australia", 2024)
	assert.True(t, ok)
	assert.Equal(t, 120.0, v)
	_, ok = cpi.Value("Spain", 2019)
	assert.False(t, ok)

	_, err = LoadExpenditure(readCSV(t, "Country Name,name", "Spain,x"))
	assert.Error(t, err)

	income, err := LoadIncomeFactors(readCSV(t, "Country Name,factor", "Spain,0.8"))
	require.NoError(t, err)
	assert.Equal(t, 0.8, income["Spain"])
}

func TestLoadPenetration(t *testing.T) {
	p, err := LoadPenetration(readCSV(t,
		"market,dimension,value,non_customers",
		"Australia,gender,Female,1000",
		"AUS,,,5000",
	))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, p.Groups[core.GroupKey{Market: core.MarketAustralia, Dimension: core.DimensionGender, Value: "Female"}])
	assert.Equal(t, 5000.0, p.Totals[core.MarketAustralia])

	_, err = LoadPenetration(readCSV(t, "market,dimension,value,non_customers", "Atlantis,,,1"))
	assert.Error(t, err)
}

func TestLoadFXTable(t *testing.T) {
	quotes, err := LoadFXTable(readCSV(t, "pair,date,rate", "GBPAUD,2019-10-17,1.9"))
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "GBPAUD", quotes[0].Pair)
	assert.Equal(t, 17, quotes[0].Date.Day())

	_, err = LoadFXTable(readCSV(t, "pair,date,rate", "GBPAUD,17/10/2019,1.9"))
	assert.Error(t, err)
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWriter(zerolog.Nop())

	err := w.WriteWorkbook(path, []report.Table{
		{
			Name:    "costs",
			Headers: []string{"factor", "amount", "ratio"},
			Money:   []int{1},
			Rows: [][]interface{}{
				{"stroke", 3600.456, 0.123456},
				{"anxiety", nil, 1.5},
			},
		},
		{Name: "other", Headers: []string{"x"}, Rows: [][]interface{}{{1}}},
	})
	require.NoError(t, err)

	data, err := NewDataReader(path, zerolog.Nop()).ReadSheet("costs")
	require.NoError(t, err)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "3600.46", data.Rows[0]["amount"])
	assert.Equal(t, "0.123456", data.Rows[0]["ratio"])
	assert.Equal(t, "", data.Rows[1]["amount"])

	other, err := NewDataReader(path, zerolog.Nop()).ReadSheet("other")
	require.NoError(t, err)
	assert.Equal(t, "1", other.Rows[0]["x"])

	first, err := NewDataReader(path, zerolog.Nop()).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"factor", "amount", "ratio"}, first.Headers)
}

func TestWriteWorkbookNoTables(t *testing.T) {
	err := NewWriter(zerolog.Nop()).WriteWorkbook(filepath.Join(t.TempDir(), "x.xlsx"), nil)
	assert.Error(t, err)
}
