package invoice

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"timesheet/internal/core"
)

// number2 is a decimal written as a JSON number with two decimals.
type number2 decimal.Decimal

func (n number2) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(n).StringFixed(places)), nil
}

func (n *number2) UnmarshalJSON(data []byte) error {
	return (*decimal.Decimal)(n).UnmarshalJSON(data)
}

// quoted2 is a decimal written as a JSON string with two decimals.
type quoted2 decimal.Decimal

func (q quoted2) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(decimal.Decimal(q).StringFixed(places))), nil
}

func (q *quoted2) UnmarshalJSON(data []byte) error {
	return (*decimal.Decimal)(q).UnmarshalJSON(data)
}

// plain is a decimal written as a bare JSON number.
type plain decimal.Decimal

func (p plain) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(p).String()), nil
}

func (p *plain) UnmarshalJSON(data []byte) error {
	return (*decimal.Decimal)(p).UnmarshalJSON(data)
}

type monthJSON struct {
	MonthName     string       `json:"monthName"`
	MonthKey      string       `json:"monthKey"`
	Entries       []core.Entry `json:"entries"`
	TotalHours    number2      `json:"totalHours"`
	TotalDays     int          `json:"totalDays"`
	MonthlyAmount number2      `json:"monthlyAmount"`
}

type summaryJSON struct {
	TotalHours       quoted2      `json:"totalHours"`
	TotalAmount      quoted2      `json:"totalAmount"`
	TotalDays        int          `json:"totalDays"`
	HourlyRate       plain        `json:"hourlyRate"`
	Period           string       `json:"period"`
	MonthlyBreakdown []MonthGroup `json:"monthlyBreakdown"`
}

func (g MonthGroup) MarshalJSON() ([]byte, error) {
	entries := g.Entries
	if entries == nil {
		entries = []core.Entry{}
	}
	return json.Marshal(monthJSON{
		MonthName:     g.Label,
		MonthKey:      g.Key,
		Entries:       entries,
		TotalHours:    number2(g.Hours),
		TotalDays:     g.Count,
		MonthlyAmount: number2(g.Amount),
	})
}

func (g *MonthGroup) UnmarshalJSON(data []byte) error {
	var w monthJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*g = MonthGroup{
		Key:     w.MonthKey,
		Label:   w.MonthName,
		Entries: w.Entries,
		Count:   w.TotalDays,
		Hours:   decimal.Decimal(w.TotalHours),
		Amount:  decimal.Decimal(w.MonthlyAmount),
	}
	return nil
}

func (s Summary) MarshalJSON() ([]byte, error) {
	months := s.Months
	if months == nil {
		months = []MonthGroup{}
	}
	return json.Marshal(summaryJSON{
		TotalHours:       quoted2(s.TotalHours),
		TotalAmount:      quoted2(s.TotalAmount),
		TotalDays:        s.TotalEntries,
		HourlyRate:       plain(s.HourlyRate),
		Period:           s.Period,
		MonthlyBreakdown: months,
	})
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	var w summaryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Summary{
		TotalHours:   decimal.Decimal(w.TotalHours),
		TotalAmount:  decimal.Decimal(w.TotalAmount),
		TotalEntries: w.TotalDays,
		HourlyRate:   decimal.Decimal(w.HourlyRate),
		Period:       w.Period,
		Months:       w.MonthlyBreakdown,
	}
	return nil
}
