package fxrates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"goimpact/ports"
)

// TableProvider answers from an in-memory table, for offline runs.
type TableProvider struct {
	rates map[string]float64
}

func NewTableProvider() *TableProvider {
	return &TableProvider{rates: make(map[string]float64)}
}

// Set stores the rate of pair on date.
func (p *TableProvider) Set(pair ports.CurrencyPair, date time.Time, rate float64) {
	p.rates[tableKey(pair, date)] = rate
}

func (p *TableProvider) Rate(_ context.Context, pair ports.CurrencyPair, date time.Time) (float64, bool, error) {
	rate, ok := p.rates[tableKey(pair, date)]
	return rate, ok, nil
}

// Len is the number of stored quotes.
func (p *TableProvider) Len() int { return len(p.rates) }

func tableKey(pair ports.CurrencyPair, date time.Time) string {
	return fmt.Sprintf("%s%s@%s", strings.ToUpper(pair.Base), strings.ToUpper(pair.Quote), date.Format(dateLayout))
}

// ParsePair accepts "GBPAUD", "GBP/AUD" or the "GBPAUD=X" ticker form.
func ParsePair(s string) (ports.CurrencyPair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "=X")
	s = strings.ReplaceAll(s, "/", "")
	if len(s) != 6 {
		return ports.CurrencyPair{}, fmt.Errorf("invalid currency pair %q", s)
	}
	return ports.CurrencyPair{Base: s[:3], Quote: s[3:]}, nil
}
