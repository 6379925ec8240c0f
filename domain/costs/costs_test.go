package costs

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"goimpact/domain/core"
	"goimpact/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRates struct {
	mock.Mock
}

func (m *mockRates) Rate(ctx context.Context, pair ports.CurrencyPair, date time.Time) (float64, bool, error) {
	args := m.Called(ctx, pair, date)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func refs() References {
	cpi := YearTable{}
	cpi.Set("Australia", 2019, 100)
	cpi.Set("Australia", 2024, 120)
	exp := YearTable{}
	exp.Set("Australia", 2024, 1.5)
	return References{
		CPI:         cpi,
		Expenditure: exp,
		Income: IncomeFactors{
			IncomeSourceUK:  {"Australia": 0.8},
			IncomeSourceUSA: {"Australia": 0.6},
		},
	}
}

func record(factor string, direct bool) Record {
	return Record{Factor: factor, AgeGroup: "adult", Gender: "all", Category: "health", Direct: direct, BaseAmount: 1000, BaseYear: 2019}
}

func fxDate() time.Time { return time.Date(2019, time.October, 17, 0, 0, 0, 0, time.UTC) }

var gbpAud = ports.CurrencyPair{Base: "GBP", Quote: "AUD"}

func TestNormalize_Direct(t *testing.T) {
	rates := &mockRates{}
	rates.On("Rate", mock.Anything, gbpAud, fxDate()).Return(2.0, true, nil)

	n := NewNormalizer(rates, refs(), DefaultOptions())
	figs, err := n.Normalize(context.Background(), []Record{record("Diabetes", true)}, []core.Market{core.MarketAustralia})
	require.NoError(t, err)
	require.Len(t, figs, 1)

	f := figs[0]
	require.NoError(t, f.Err)
	assert.True(t, f.Defined)
	assert.Equal(t, "Australia", f.Geography)
	assert.InDelta(t, 2000.0, f.LocalAmount, 1e-9)
	assert.InDelta(t, 1.2, f.InflationFactor, 1e-12)
	assert.InDelta(t, 2400.0, f.InflatedAmount, 1e-9)
	assert.InDelta(t, 1.5, f.AdjustmentFactor, 1e-12)
	assert.InDelta(t, 3600.0, f.AdjustedAmount, 1e-9)
	rates.AssertExpectations(t)
}

func TestNormalize_IndirectUsesIncomeSheet(t *testing.T) {
	rates := &mockRates{}
	rates.On("Rate", mock.Anything, gbpAud, fxDate()).Return(2.0, true, nil)

	n := NewNormalizer(rates, refs(), DefaultOptions())
	figs, err := n.Normalize(context.Background(),
		[]Record{record("Diabetes", false), record("Osteoporosis", false)},
		[]core.Market{core.MarketAustralia})
	require.NoError(t, err)
	require.Len(t, figs, 2)
	assert.InDelta(t, 0.8, figs[0].AdjustmentFactor, 1e-12)
	assert.InDelta(t, 0.6, figs[1].AdjustmentFactor, 1e-12)
	assert.InDelta(t, 1000*2*1.2*0.6, figs[1].AdjustedAmount, 1e-9)
}

func TestNormalize_MissingCPIKeepsRow(t *testing.T) {
	rates := &mockRates{}
	rates.On("Rate", mock.Anything, mock.Anything, mock.Anything).Return(2.0, true, nil)

	rec := record("Diabetes", true)
	rec.BaseYear = 2010
	n := NewNormalizer(rates, refs(), DefaultOptions())
	figs, err := n.Normalize(context.Background(), []Record{rec}, []core.Market{core.MarketAustralia})
	require.NoError(t, err)
	require.Len(t, figs, 1)
	assert.False(t, figs[0].Defined)
	assert.ErrorIs(t, figs[0].Err, core.ErrCPIUnavailable)
	assert.True(t, core.IsMissingReferenceData(figs[0].Err))
}

func TestNormalize_RateUnavailable(t *testing.T) {
	rates := &mockRates{}
	rates.On("Rate", mock.Anything, mock.Anything, mock.Anything).Return(0.0, false, nil)

	n := NewNormalizer(rates, refs(), DefaultOptions())
	figs, err := n.Normalize(context.Background(), []Record{record("Diabetes", true)}, []core.Market{core.MarketAustralia})
	require.NoError(t, err)
	require.Len(t, figs, 1)
	assert.False(t, figs[0].Defined)
	assert.True(t, core.IsRateUnavailable(figs[0].Err))
}

func TestNormalize_ProviderErrorIsRowLevel(t *testing.T) {
	rates := &mockRates{}
	rates.On("Rate", mock.Anything, mock.Anything, mock.Anything).Return(0.0, false, errors.New("boom"))

	n := NewNormalizer(rates, refs(), DefaultOptions())
	figs, err := n.Normalize(context.Background(), []Record{record("Diabetes", true)}, []core.Market{core.MarketAustralia})
	require.NoError(t, err)
	assert.True(t, core.IsRateUnavailable(figs[0].Err))
}

func TestNormalize_SkipsIneligibleRecords(t *testing.T) {
	rates := &mockRates{}
	child := record("Diabetes", true)
	child.AgeGroup = "child"
	n := NewNormalizer(rates, refs(), DefaultOptions())
	figs, err := n.Normalize(context.Background(), []Record{child}, []core.Market{core.MarketAustralia})
	require.NoError(t, err)
	assert.Empty(t, figs)
	rates.AssertNotCalled(t, "Rate", mock.Anything, mock.Anything, mock.Anything)
}

func TestNormalize_IdentityPairSkipsProvider(t *testing.T) {
	rates := &mockRates{}
	opts := DefaultOptions()
	opts.BaseCurrency = "AUD"
	n := NewNormalizer(rates, refs(), opts)
	figs, err := n.Normalize(context.Background(), []Record{record("Diabetes", true)}, []core.Market{core.MarketAustralia})
	require.NoError(t, err)
	assert.Equal(t, 1.0, figs[0].ExchangeRate)
	rates.AssertNotCalled(t, "Rate", mock.Anything, mock.Anything, mock.Anything)
}

func TestMoney(t *testing.T) {
	d, ok := Money(1234.5678)
	require.True(t, ok)
	assert.Equal(t, "1234.57", d.String())

	_, ok = Money(math.NaN())
	assert.False(t, ok)

	assert.Equal(t, "3.5", SumMoney(1.254, 2.246).String())
}
