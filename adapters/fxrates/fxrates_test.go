package fxrates

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"goimpact/domain/core"
	"goimpact/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var gbpAud = ports.CurrencyPair{Base: "GBP", Quote: "AUD"}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func rateServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2019-10-17":
			assert.Equal(t, "GBP", r.URL.Query().Get("from"))
			fmt.Fprintf(w, `{"amount":1.0,"base":"GBP","date":"2019-10-17","rates":{"%s":1.8712}}`, r.URL.Query().Get("to"))
		case "/2019-10-19":
			// weekend: the API answers with Friday's quote
			fmt.Fprint(w, `{"amount":1.0,"base":"GBP","date":"2019-10-18","rates":{"AUD":1.88}}`)
		case "/2019-10-21":
			fmt.Fprint(w, `{"amount":1.0,"base":"GBP","date":"2019-10-21","rates":{"AUD":1.9}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPProvider_Rate(t *testing.T) {
	p := NewHTTPProvider(rateServer(t).URL+"/", time.Second)

	rate, ok, err := p.Rate(context.Background(), gbpAud, day(2019, time.October, 17))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 1.8712, rate, 1e-12)

	_, ok, err = p.Rate(context.Background(), gbpAud, day(2019, time.October, 19))
	require.NoError(t, err)
	assert.False(t, ok, "substituted date is not a quote for the requested day")

	_, ok, err = p.Rate(context.Background(), gbpAud, day(2019, time.October, 20))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()
	p := NewHTTPProvider(srv.URL, time.Second)
	_, _, err := p.Rate(context.Background(), gbpAud, day(2019, time.October, 17))
	assert.Error(t, err)
}

func TestShiftingProvider_StepsOverWeekend(t *testing.T) {
	p := NewShiftingProvider(NewHTTPProvider(rateServer(t).URL, time.Second), 4)
	rate, ok, err := p.Rate(context.Background(), gbpAud, day(2019, time.October, 19))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 1.9, rate, 1e-12)
}

func TestShiftingProvider_GivesUp(t *testing.T) {
	table := NewTableProvider()
	table.Set(gbpAud, day(2019, time.October, 21), 1.9)

	p := NewShiftingProvider(table, 2)
	_, ok, err := p.Rate(context.Background(), gbpAud, day(2019, time.October, 18))
	assert.False(t, ok)
	assert.True(t, core.IsRateUnavailable(err))
}

type countingProvider struct {
	mock.Mock
}

func (m *countingProvider) Rate(ctx context.Context, pair ports.CurrencyPair, date time.Time) (float64, bool, error) {
	args := m.Called(pair, date)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func TestCache_MemoisesHitsAndMisses(t *testing.T) {
	next := &countingProvider{}
	next.On("Rate", gbpAud, day(2019, time.October, 17)).Return(1.87, true, nil).Once()
	next.On("Rate", gbpAud, day(2019, time.October, 19)).Return(0.0, false, nil).Once()

	var results []string
	c := NewCache(next, func(r string) { results = append(results, r) })
	for i := 0; i < 3; i++ {
		rate, ok, err := c.Rate(context.Background(), gbpAud, day(2019, time.October, 17))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1.87, rate)

		_, ok, err = c.Rate(context.Background(), gbpAud, day(2019, time.October, 19))
		require.NoError(t, err)
		assert.False(t, ok)
	}
	next.AssertExpectations(t)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"fetched", "fetched", "hit", "hit", "hit", "hit"}, results)
}

func TestParsePair(t *testing.T) {
	for _, in := range []string{"GBPAUD=X", "gbp/aud", "GBPAUD"} {
		p, err := ParsePair(in)
		require.NoError(t, err, in)
		assert.Equal(t, gbpAud, p)
	}
	_, err := ParsePair("GBP")
	assert.Error(t, err)
}
