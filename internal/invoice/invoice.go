package invoice

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"timesheet/internal/core"
)

// DefaultDueDays is the payment term used when none is configured.
const DefaultDueDays = 30

// Business is the static issuer and bill-to metadata printed on invoices.
type Business struct {
	Name          string
	Email         string
	Tagline       string
	BillToName    string
	BillToAddress string
}

// Invoice is everything the rendering sink needs for one document.
type Invoice struct {
	Number   string
	IssuedOn time.Time
	DueOn    time.Time
	DueDays  int
	Range    core.DateRange
	Business Business
	Summary  Summary
}

// Suffix returns the random part of an invoice number, 0-999.
type Suffix func() int

// RandomSuffix draws the invoice number suffix from math/rand.
func RandomSuffix() int {
	return rand.IntN(1000)
}

// NewInvoice stamps a summary with a number, an issue date and a due date.
func NewInvoice(s Summary, r core.DateRange, b Business, now time.Time, dueDays int, suffix Suffix) Invoice {
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}
	if suffix == nil {
		suffix = RandomSuffix
	}
	return Invoice{
		Number:   Number(now, suffix()),
		IssuedOn: now,
		DueOn:    now.AddDate(0, 0, dueDays),
		DueDays:  dueDays,
		Range:    r,
		Business: b,
		Summary:  s,
	}
}

// Number formats an invoice number like INV-2024-05-01-042.
func Number(t time.Time, suffix int) string {
	return fmt.Sprintf("INV-%04d-%02d-%02d-%03d", t.Year(), int(t.Month()), t.Day(), suffix%1000)
}

// Filename is the attachment name of the rendered document.
func Filename(r core.DateRange) string {
	return "invoice-" + r.Start + "-to-" + r.End + ".pdf"
}

// SplitAddress puts the first comma-separated part of an address on the
// first line and the rest on the second.
func SplitAddress(addr string) (string, string) {
	first, rest, _ := strings.Cut(addr, ",")
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}
