// Package fxrates provides exchange-rate providers and the decorators the cost pipeline
// wraps them in.
package fxrates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"goimpact/ports"

	"github.com/tidwall/gjson"
)

const dateLayout = "2006-01-02"

// HTTPProvider reads closing rates from a JSON endpoint of the form
// {base}/{date}?from=GBP&to=AUD answering {"date": "...", "rates": {"AUD": 1.87}}.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Rate returns ok=false when the endpoint has no quote for that exact date, including
// when it answers with the nearest earlier trading day.
func (p *HTTPProvider) Rate(ctx context.Context, pair ports.CurrencyPair, date time.Time) (float64, bool, error) {
	day := date.Format(dateLayout)
	q := url.Values{"from": {pair.Base}, "to": {pair.Quote}}
	endpoint := fmt.Sprintf("%s/%s?%s", p.baseURL, day, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("HTTP request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, false, nil
	case resp.StatusCode != http.StatusOK:
		return 0, false, fmt.Errorf("rate API returned status %d: %s", resp.StatusCode, string(body))
	}

	if !gjson.ValidBytes(body) {
		return 0, false, fmt.Errorf("rate API returned invalid JSON")
	}
	if d := gjson.GetBytes(body, "date"); d.Exists() && d.String() != day {
		return 0, false, nil
	}
	rate := gjson.GetBytes(body, "rates."+pair.Quote)
	if !rate.Exists() || rate.Float() <= 0 {
		return 0, false, nil
	}
	return rate.Float(), true, nil
}
