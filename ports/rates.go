package ports

import (
	"context"
	"fmt"
	"time"
)

// CurrencyPair is a base/quote pair such as GBP/AUD.
type CurrencyPair struct {
	Base  string
	Quote string
}

func (p CurrencyPair) String() string { return fmt.Sprintf("%s%s", p.Base, p.Quote) }

// Identity reports whether no conversion is needed.
func (p CurrencyPair) Identity() bool { return p.Base == p.Quote }

// RateProvider answers the closing exchange rate for a pair on a date.
// ok is false when the provider has no quote for that exact day.
type RateProvider interface {
	Rate(ctx context.Context, pair CurrencyPair, date time.Time) (rate float64, ok bool, err error)
}
