package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"timesheet/internal/core"
	"timesheet/internal/invoice"
	"timesheet/internal/sheets"
)

// Renderer writes a finished invoice document.
type Renderer interface {
	Render(w io.Writer, inv invoice.Invoice) error
}

type InvoiceConfig struct {
	UserID   string
	Rate     decimal.Decimal
	DueDays  int
	Business invoice.Business
}

type InvoiceService struct {
	entries  sheets.RangeLister
	renderer Renderer
	cfg      InvoiceConfig
	now      func() time.Time
	suffix   invoice.Suffix
}

func NewInvoiceService(entries sheets.RangeLister, renderer Renderer, cfg InvoiceConfig) *InvoiceService {
	if cfg.DueDays <= 0 {
		cfg.DueDays = invoice.DefaultDueDays
	}
	return &InvoiceService{
		entries:  entries,
		renderer: renderer,
		cfg:      cfg,
		now:      time.Now,
		suffix:   invoice.RandomSuffix,
	}
}

// Period is the preview of an invoice range.
type Period struct {
	Entries []core.Entry
	Summary invoice.Summary
}

func (s *InvoiceService) Rate() decimal.Decimal { return s.cfg.Rate }

// Period fetches the entries strictly inside r and summarizes them at the
// configured rate.
func (s *InvoiceService) Period(ctx context.Context, r core.DateRange) (Period, error) {
	r = r.Trimmed()
	if err := r.Validate(); err != nil {
		return Period{}, err
	}
	entries, err := s.entries.ListEntriesInRange(ctx, s.cfg.UserID, r)
	if err != nil {
		return Period{}, fmt.Errorf("list entries for %s: %w", r.Label(), err)
	}
	return Period{Entries: entries, Summary: invoice.Summarize(entries, r, s.cfg.Rate)}, nil
}

// Generate renders a previously computed summary to w. The summary is
// rendered as given; only the invoice metadata is produced here.
func (s *InvoiceService) Generate(ctx context.Context, w io.Writer, summary invoice.Summary, r core.DateRange) (invoice.Invoice, error) {
	r = r.Trimmed()
	if err := r.Validate(); err != nil {
		return invoice.Invoice{}, err
	}
	if err := ctx.Err(); err != nil {
		return invoice.Invoice{}, err
	}
	if summary.HourlyRate.IsZero() {
		summary.HourlyRate = s.cfg.Rate
	}
	if summary.Period == "" {
		summary.Period = r.Label()
	}
	inv := invoice.NewInvoice(summary, r, s.cfg.Business, s.now(), s.cfg.DueDays, s.suffix)
	if err := s.renderer.Render(w, inv); err != nil {
		return invoice.Invoice{}, err
	}
	return inv, nil
}
