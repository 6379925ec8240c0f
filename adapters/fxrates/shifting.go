package fxrates

import (
	"context"
	"fmt"
	"time"

	"goimpact/domain/core"
	"goimpact/ports"
)

// ShiftingProvider retries on following calendar days when a date has no quote, to step
// over weekends and holidays.
type ShiftingProvider struct {
	next        ports.RateProvider
	maxAttempts int
}

func NewShiftingProvider(next ports.RateProvider, maxAttempts int) *ShiftingProvider {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ShiftingProvider{next: next, maxAttempts: maxAttempts}
}

// Rate tries date, date+1, ... up to maxAttempts days and fails with ErrRateUnavailable.
func (p *ShiftingProvider) Rate(ctx context.Context, pair ports.CurrencyPair, date time.Time) (float64, bool, error) {
	for i := 0; i < p.maxAttempts; i++ {
		day := date.AddDate(0, 0, i)
		rate, ok, err := p.next.Rate(ctx, pair, day)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return rate, true, nil
		}
	}
	return 0, false, fmt.Errorf("%w: %s from %s after %d days", core.ErrRateUnavailable, pair, date.Format(dateLayout), p.maxAttempts)
}
