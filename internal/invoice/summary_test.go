package invoice

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"timesheet/internal/core"
)

func entry(date, hours, desc string) core.Entry {
	return core.Entry{ID: date + desc, Date: date, TimeIn: "09:00", TimeOut: "10:00", Hours: core.Hours(hours), Description: desc}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSummarizeGroupsByMonth(t *testing.T) {
	r := core.DateRange{Start: "2024-03-01", End: "2024-04-30"}
	entries := []core.Entry{
		entry("2024-03-05", "3", "a"),
		entry("2024-03-20", "5", "b"),
		entry("2024-04-02", "2", "c"),
	}

	s := Summarize(entries, r, dec("25"))

	if len(s.Months) != 2 {
		t.Fatalf("expected 2 months, got %d", len(s.Months))
	}
	march, april := s.Months[0], s.Months[1]
	if march.Key != "2024-03" || march.Label != "March 2024" || march.Count != 2 {
		t.Fatalf("unexpected march group: %+v", march)
	}
	if !march.Hours.Equal(dec("8")) || march.Amount.StringFixed(2) != "200.00" {
		t.Fatalf("march hours=%s amount=%s", march.Hours, march.Amount)
	}
	if april.Key != "2024-04" || april.Count != 1 || april.Amount.StringFixed(2) != "50.00" {
		t.Fatalf("unexpected april group: %+v", april)
	}
	if s.TotalHours.StringFixed(2) != "10.00" || s.TotalAmount.StringFixed(2) != "250.00" {
		t.Fatalf("totals hours=%s amount=%s", s.TotalHours, s.TotalAmount)
	}
	if s.TotalEntries != 3 {
		t.Fatalf("total entries = %d", s.TotalEntries)
	}
	if s.Period != "2024-03-01 to 2024-04-30" {
		t.Fatalf("period = %q", s.Period)
	}
}

func TestSummarizePartitionsEveryEntry(t *testing.T) {
	entries := []core.Entry{
		entry("2024-05-10", "1", "x"),
		entry("2024-03-01", "2", "y"),
		entry("not-a-date", "1", "z"),
		entry("2024-05-01", "4", "w"),
		entry("2024-03-31", "", "v"),
	}
	s := Summarize(entries, core.DateRange{Start: "2024-01-01", End: "2024-12-31"}, dec("10"))

	seen := map[string]int{}
	count := 0
	for i, m := range s.Months {
		if i > 0 && s.Months[i-1].Key >= m.Key {
			t.Fatalf("months not sorted ascending: %s before %s", s.Months[i-1].Key, m.Key)
		}
		if m.Count != len(m.Entries) {
			t.Fatalf("count %d != len(entries) %d for %s", m.Count, len(m.Entries), m.Key)
		}
		for _, e := range m.Entries {
			if got := core.MonthKey(e.Date); got != m.Key {
				t.Fatalf("entry %s in group %s, expected %s", e.ID, m.Key, got)
			}
			seen[e.ID]++
		}
		count += m.Count
	}
	if count != len(entries) || s.TotalEntries != len(entries) {
		t.Fatalf("grouped %d of %d entries", count, len(entries))
	}
	for _, e := range entries {
		if seen[e.ID] != 1 {
			t.Fatalf("entry %s appears %d times", e.ID, seen[e.ID])
		}
	}
	if s.Months[0].Key != core.UndatedKey {
		t.Fatalf("undated group should sort first, got %s", s.Months[0].Key)
	}
	// within a month input order is kept
	may := s.Months[len(s.Months)-1]
	if may.Entries[0].Date != "2024-05-10" || may.Entries[1].Date != "2024-05-01" {
		t.Fatalf("input order not preserved: %+v", may.Entries)
	}
}

func TestSummarizeNonNumericHoursCountAsZero(t *testing.T) {
	entries := []core.Entry{
		entry("2024-03-05", "abc", "bad"),
		entry("2024-03-06", "2", "good"),
	}
	s := Summarize(entries, core.DateRange{Start: "2024-03-01", End: "2024-03-31"}, dec("25"))
	if len(s.Months) != 1 || s.Months[0].Count != 2 {
		t.Fatalf("entry with bad hours must still be listed: %+v", s.Months)
	}
	if !s.TotalHours.Equal(dec("2")) || !s.TotalAmount.Equal(dec("50")) {
		t.Fatalf("totals hours=%s amount=%s", s.TotalHours, s.TotalAmount)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, core.DateRange{Start: "2024-03-01", End: "2024-03-31"}, dec("25"))
	if len(s.Months) != 0 || s.TotalEntries != 0 || !s.TotalHours.IsZero() || !s.TotalAmount.IsZero() {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}

func TestRoundingTiersAreIndependent(t *testing.T) {
	rate := dec("25")
	entries := []core.Entry{
		entry("2024-03-05", "1.005", "a"),
		entry("2024-03-06", "1.005", "b"),
	}
	s := Summarize(entries, core.DateRange{Start: "2024-03-01", End: "2024-03-31"}, rate)

	g := s.Months[0]
	if g.Hours.StringFixed(2) != "2.01" || g.Amount.StringFixed(2) != "50.25" {
		t.Fatalf("group hours=%s amount=%s", g.Hours, g.Amount)
	}
	rows := decimal.Zero
	for _, e := range g.Entries {
		a := RowAmount(e.Hours, rate)
		if a.StringFixed(2) != "25.13" {
			t.Fatalf("row amount = %s, want 25.13", a)
		}
		rows = rows.Add(a)
	}
	if rows.StringFixed(2) != "50.26" {
		t.Fatalf("summed rows = %s", rows)
	}
}

func TestGrandTotalFromUnroundedHours(t *testing.T) {
	entries := []core.Entry{
		entry("2024-03-05", "1.005", "a"),
		entry("2024-04-05", "1.005", "b"),
	}
	s := Summarize(entries, core.DateRange{Start: "2024-03-01", End: "2024-04-30"}, dec("25"))

	sum := decimal.Zero
	for _, m := range s.Months {
		sum = sum.Add(m.Hours)
	}
	if sum.StringFixed(2) != "2.02" {
		t.Fatalf("summed month hours = %s, want 2.02", sum)
	}
	if s.TotalHours.StringFixed(2) != "2.01" {
		t.Fatalf("total hours = %s, want 2.01", s.TotalHours)
	}
	if s.TotalAmount.StringFixed(2) != "50.25" {
		t.Fatalf("total amount = %s, want 50.25", s.TotalAmount)
	}
}

func TestSummaryJSON(t *testing.T) {
	entries := []core.Entry{
		entry("2024-03-05", "3", "a"),
		entry("2024-03-20", "5", "b"),
		entry("2024-04-02", "2", "c"),
	}
	s := Summarize(entries, core.DateRange{Start: "2024-03-01", End: "2024-04-30"}, dec("25"))

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(out)
	for _, want := range []string{
		`"totalHours":"10.00"`,
		`"totalAmount":"250.00"`,
		`"totalDays":3`,
		`"hourlyRate":25`,
		`"monthKey":"2024-03"`,
		`"monthName":"March 2024"`,
		`"monthlyAmount":200.00`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %s in %s", want, body)
		}
	}

	var back Summary
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.TotalAmount.Equal(s.TotalAmount) || len(back.Months) != 2 || back.Months[1].Count != 1 {
		t.Fatalf("round trip lost data: %+v", back)
	}
}

func TestMonthGroupDecodesStringsOrNumbers(t *testing.T) {
	var g MonthGroup
	in := `{"monthKey":"2024-03","monthName":"March 2024","entries":[],"totalDays":2,"totalHours":"8.00","monthlyAmount":200}`
	if err := json.Unmarshal([]byte(in), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !g.Hours.Equal(dec("8")) || !g.Amount.Equal(dec("200")) || g.Count != 2 {
		t.Fatalf("decoded %+v", g)
	}
}

func TestNewInvoice(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := core.DateRange{Start: "2024-03-01", End: "2024-04-30"}
	inv := NewInvoice(Summary{}, r, Business{Name: "Acme"}, now, 0, func() int { return 42 })

	if inv.Number != "INV-2024-05-01-042" {
		t.Fatalf("number = %q", inv.Number)
	}
	if inv.DueDays != DefaultDueDays || !inv.DueOn.Equal(now.AddDate(0, 0, 30)) {
		t.Fatalf("due = %v (%d days)", inv.DueOn, inv.DueDays)
	}
	if Filename(r) != "invoice-2024-03-01-to-2024-04-30.pdf" {
		t.Fatalf("filename = %q", Filename(r))
	}

	inv = NewInvoice(Summary{}, r, Business{}, now, 14, nil)
	if !strings.HasPrefix(inv.Number, "INV-2024-05-01-") || len(inv.Number) != len("INV-2024-05-01-000") {
		t.Fatalf("random number = %q", inv.Number)
	}
	if !inv.DueOn.Equal(now.AddDate(0, 0, 14)) {
		t.Fatalf("due = %v", inv.DueOn)
	}
}

func TestSplitAddress(t *testing.T) {
	cases := []struct{ in, l1, l2 string }{
		{"123 Main St, Springfield, IL", "123 Main St", "Springfield, IL"},
		{"Remote", "Remote", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		l1, l2 := SplitAddress(tc.in)
		if l1 != tc.l1 || l2 != tc.l2 {
			t.Errorf("SplitAddress(%q) = %q, %q", tc.in, l1, l2)
		}
	}
}
