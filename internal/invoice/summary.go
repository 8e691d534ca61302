// Package invoice turns time entries into a monthly invoice summary.
//
// Rounding happens at two independent tiers. Each month rounds its own hour
// subtotal and derives its amount from that rounded figure. The grand total
// accumulates the unrounded hours of every entry and rounds once at the
// end. The two tiers are not reconciled: the sum of monthly amounts may
// differ from the total amount by a cent when many fractional entries sit
// on a rounding boundary.
package invoice

import (
	"sort"

	"github.com/shopspring/decimal"

	"timesheet/internal/core"
)

const places = 2

// MonthGroup buckets the entries of one calendar month.
type MonthGroup struct {
	Key     string // YYYY-MM
	Label   string // e.g. "March 2024"
	Entries []core.Entry
	Count   int
	Hours   decimal.Decimal // rounded subtotal
	Amount  decimal.Decimal // round2(Hours x rate)
}

// Summary aggregates a whole invoice period.
type Summary struct {
	TotalHours   decimal.Decimal
	TotalAmount  decimal.Decimal
	TotalEntries int
	HourlyRate   decimal.Decimal
	Period       string
	Months       []MonthGroup
}

// Summarize groups entries by calendar month and prices them at rate.
// Entries keep the order they were supplied in within their month.
// Missing or non-numeric hours count as zero but the entry is still listed.
func Summarize(entries []core.Entry, r core.DateRange, rate decimal.Decimal) Summary {
	groups := map[string]*MonthGroup{}
	subtotals := map[string]decimal.Decimal{}
	total := decimal.Zero

	for _, e := range entries {
		key := core.MonthKey(e.Date)
		g, ok := groups[key]
		if !ok {
			g = &MonthGroup{Key: key, Label: core.MonthLabel(e.Date)}
			groups[key] = g
			subtotals[key] = decimal.Zero
		}
		h := e.Hours.Decimal()
		g.Entries = append(g.Entries, e)
		g.Count++
		subtotals[key] = subtotals[key].Add(h)
		total = total.Add(h)
	}

	months := make([]MonthGroup, 0, len(groups))
	for key, g := range groups {
		g.Hours = subtotals[key].Round(places)
		g.Amount = g.Hours.Mul(rate).Round(places)
		months = append(months, *g)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Key < months[j].Key })

	return Summary{
		TotalHours:   total.Round(places),
		TotalAmount:  total.Mul(rate).Round(places),
		TotalEntries: len(entries),
		HourlyRate:   rate,
		Period:       r.Label(),
		Months:       months,
	}
}

// RowAmount prices a single entry. It is computed from the entry's own
// hours and does not have to add up to the month amount.
func RowAmount(h core.Hours, rate decimal.Decimal) decimal.Decimal {
	return h.Decimal().Mul(rate).Round(places)
}

// Entries flattens the month groups back into one list.
func (s Summary) Entries() []core.Entry {
	var out []core.Entry
	for _, m := range s.Months {
		out = append(out, m.Entries...)
	}
	return out
}
