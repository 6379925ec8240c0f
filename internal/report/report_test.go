package report

import (
	"errors"
	"strings"
	"testing"

	"goimpact/domain/activity"
	"goimpact/domain/core"
	"goimpact/domain/costs"
	"goimpact/domain/elasticity"
	"goimpact/domain/health"
	"goimpact/domain/risk"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityTableRoundsNonCustomerShare(t *testing.T) {
	tbl := ActivityTable([]activity.Summary{
		{
			Group:             core.GroupKey{Market: core.MarketAustralia, Dimension: core.DimensionGender, Value: "Female"},
			CustomerWeight:    1,
			NonCustomerWeight: 2,
			TotalWeight:       3,
			NonCustomerShare:  2.0 / 3.0,
		},
		{
			Group:            core.GroupKey{Market: core.MarketAustralia, Dimension: core.DimensionGender, Value: "Male"},
			NonCustomerShare: 0.25,
		},
	})
	col := -1
	for i, h := range tbl.Headers {
		if h == "non_customers_pct" {
			col = i
		}
	}
	require.GreaterOrEqual(t, col, 0)
	assert.Equal(t, 0.7, tbl.Rows[0][col])
	assert.Equal(t, 0.2, tbl.Rows[1][col])
}

func TestScenarioTable(t *testing.T) {
	rows := []elasticity.Scenario{
		{
			ID:           "AUS10F",
			Tier:         elasticity.Tier{Column: "Q14a", Discount: 0.1, Label: "10%"},
			Group:        core.GroupKey{Market: core.MarketAustralia, Dimension: core.DimensionGender, Value: "Female"},
			NewCustomers: 100,
			NewlyActive:  50,
		},
		{ID: "AUS10M", Err: errors.New("missing penetration")},
	}

	tbl := ScenarioTable(rows)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, len(tbl.Headers), len(tbl.Rows[0]))
	assert.Equal(t, "AUS10F", tbl.Rows[0][0])
	assert.Equal(t, "Australia", tbl.Rows[0][1])

	c := Count(tbl)
	assert.Equal(t, TableCount{Table: "scenarios", Rows: 2, Failed: 1}, c)
}

func TestHealthTableUndefinedSaving(t *testing.T) {
	rows := []health.Outcome{
		{ScenarioID: "AUS10F", Factor: "stroke", Cases: risk.Saved{Active: 2, FairlyActive: 1}, SavingDefined: false, CostErr: errors.New("no cost")},
	}
	tbl := HealthTable(rows)
	require.Len(t, tbl.Rows, 1)
	row := tbl.Rows[0]
	assert.Equal(t, 3.0, row[8])
	assert.Nil(t, row[15])
	assert.True(t, tbl.IsMoney(15))
	assert.False(t, tbl.IsMoney(8))
	assert.Equal(t, 1, Count(tbl).Failed)
}

func TestSummaryMarkdownAndHTML(t *testing.T) {
	s := Summary{
		RunID:  "run-1",
		Counts: []TableCount{{Table: "scenarios", Rows: 4, Failed: 1}},
		Markets: []MarketTotal{
			{Market: "Spain", Currency: "EUR", NewCustomers: 10, Saving: decimal.NewFromFloat(12.5)},
			{Market: "Australia", Currency: "AUD", NewCustomers: 20, Saving: decimal.NewFromInt(3)},
		},
		Warnings: []string{"stroke: opposite gender"},
	}

	md := s.Markdown()
	assert.Contains(t, md, "# Impact run run-1")
	assert.Contains(t, md, "| scenarios | 4 | 1 |")
	assert.Contains(t, md, "12.50 EUR")
	assert.Less(t, strings.Index(md, "Australia"), strings.Index(md, "Spain"))
	assert.Contains(t, md, "- stroke: opposite gender")

	page := string(s.HTML())
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<title>Impact run run-1</title>")
}

func TestYearTable(t *testing.T) {
	tbl := YearTable("expenditure", "Country Name", costs.YearTable{
		"Spain":     {2022: 1.1, 2023: 1.2},
		"Australia": {2023: 2.0},
	})
	assert.Equal(t, []string{"Country Name", "2022", "2023"}, tbl.Headers)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []interface{}{"Australia", nil, 2.0}, tbl.Rows[0])
	assert.Equal(t, []interface{}{"Spain", 1.1, 1.2}, tbl.Rows[1])
}
