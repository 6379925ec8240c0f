package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/shopspring/decimal"
)

// TableCount is the size of one output table.
type TableCount struct {
	Table  string
	Rows   int
	Failed int
}

// MarketTotal aggregates one market's projected impact at one price tier. Saving is in
// local currency.
type MarketTotal struct {
	Market       string
	Price        string
	Currency     string
	NewCustomers float64
	NewlyActive  float64
	CasesSaved   float64
	Saving       decimal.Decimal
}

// Summary is the human-readable digest of a run.
type Summary struct {
	RunID    string
	Counts   []TableCount
	Markets  []MarketTotal
	Warnings []string
}

// Count returns the row and failed-row counts of a table. A row fails when any column
// whose header ends in "error" is non-empty.
func Count(t Table) TableCount {
	var errCols []int
	for i, h := range t.Headers {
		if strings.HasSuffix(h, "error") {
			errCols = append(errCols, i)
		}
	}
	c := TableCount{Table: t.Name, Rows: len(t.Rows)}
	for _, row := range t.Rows {
		for _, i := range errCols {
			if i < len(row) {
				if s, ok := row[i].(string); ok && s != "" {
					c.Failed++
					break
				}
			}
		}
	}
	return c
}

// Markdown renders the summary.
func (s Summary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Impact run %s\n\n", s.RunID)

	b.WriteString("## Tables\n\n| table | rows | failed |\n|---|---:|---:|\n")
	for _, c := range s.Counts {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", c.Table, c.Rows, c.Failed)
	}

	if len(s.Markets) > 0 {
		markets := append([]MarketTotal(nil), s.Markets...)
		sort.SliceStable(markets, func(i, j int) bool { return markets[i].Market < markets[j].Market })

		b.WriteString("\n## Markets\n\n| market | price | new customers | newly active | cases saved | saving |\n|---|---|---:|---:|---:|---:|\n")
		for _, m := range markets {
			fmt.Fprintf(&b, "| %s | %s | %.0f | %.0f | %.1f | %s %s |\n",
				m.Market, m.Price, m.NewCustomers, m.NewlyActive, m.CasesSaved, m.Saving.StringFixed(2), m.Currency)
		}
	}

	fmt.Fprintf(&b, "\n## Warnings (%d)\n\n", len(s.Warnings))
	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "- %s\n", w)
	}
	return b.String()
}

// HTML renders the summary markdown as a standalone HTML page.
func (s Summary) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Impact run " + s.RunID,
	})
	return markdown.ToHTML([]byte(s.Markdown()), p, r)
}
