// Package pdf renders an invoice as an A4 PDF document.
package pdf

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"timesheet/internal/invoice"
)

const (
	margin     = 15.0
	lineHeight = 6.0
	issueDate  = "1/2/2006"
)

// column widths in mm: date, time, description, hours, rate, amount
var columns = [6]float64{22.5, 22.5, 67.5, 22.5, 22.5, 22.5}

type rgb struct{ r, g, b int }

var (
	ink    = rgb{31, 41, 55}
	muted  = rgb{107, 114, 128}
	accent = rgb{37, 99, 235}
	green  = rgb{5, 150, 105}
	band   = rgb{243, 244, 246}
	rule   = rgb{229, 231, 235}
)

// Renderer writes invoices with fpdf.
type Renderer struct {
	compress bool
	created  time.Time
}

type Option func(*Renderer)

// WithoutCompression leaves page streams uncompressed so the text can be
// inspected.
func WithoutCompression() Option {
	return func(r *Renderer) { r.compress = false }
}

// WithCreationDate pins the document metadata dates.
func WithCreationDate(t time.Time) Option {
	return func(r *Renderer) { r.created = t }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{compress: true}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ContentType is the media type of the rendered document.
func (r *Renderer) ContentType() string { return "application/pdf" }

// Render lays out inv and writes the finished document to w.
func (r *Renderer) Render(w io.Writer, inv invoice.Invoice) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, 20)
	doc.SetCompression(r.compress)
	if !r.created.IsZero() {
		doc.SetCreationDate(r.created)
		doc.SetModificationDate(r.created)
	}
	doc.SetTitle("Invoice "+inv.Number, false)
	doc.SetAuthor(inv.Business.Name, false)

	p := &page{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
	doc.SetFooterFunc(func() { p.footer(inv.DueDays) })
	doc.AddPage()

	p.header(inv)
	p.parties(inv)
	for _, m := range inv.Summary.Months {
		p.month(m, inv.Summary.HourlyRate)
	}
	p.totals(inv.Summary)

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return nil
}

type page struct {
	doc *fpdf.Fpdf
	tr  func(string) string
}

func (p *page) font(style string, size float64, c rgb) {
	p.doc.SetFont("Helvetica", style, size)
	p.doc.SetTextColor(c.r, c.g, c.b)
}

func (p *page) cell(w, h float64, text, align string, fill bool) {
	p.doc.CellFormat(w, h, p.tr(text), "", 0, align, fill, 0, "")
}

func (p *page) line(w float64, text, align string) {
	p.doc.CellFormat(w, lineHeight, p.tr(text), "", 1, align, false, 0, "")
}

func (p *page) width() float64 {
	w, _ := p.doc.GetPageSize()
	return w - 2*margin
}

func (p *page) header(inv invoice.Invoice) {
	top := p.doc.GetY()
	p.font("B", 20, ink)
	p.doc.CellFormat(0, 10, p.tr(inv.Business.Name), "", 1, "L", false, 0, "")
	p.font("", 10, muted)
	if inv.Business.Email != "" {
		p.line(0, inv.Business.Email, "L")
	}
	if inv.Business.Tagline != "" {
		p.line(0, inv.Business.Tagline, "L")
	}
	bottom := p.doc.GetY()

	p.doc.SetXY(margin, top)
	p.font("B", 24, accent)
	p.doc.CellFormat(0, 10, "INVOICE", "", 0, "R", false, 0, "")

	y := bottom + 2
	p.doc.SetDrawColor(accent.r, accent.g, accent.b)
	p.doc.SetLineWidth(0.6)
	p.doc.Line(margin, y, margin+p.width(), y)
	p.doc.SetLineWidth(0.2)
	p.doc.SetXY(margin, y+8)
}

func (p *page) parties(inv invoice.Invoice) {
	half := p.width() / 2
	top := p.doc.GetY()

	p.font("B", 12, ink)
	p.line(half, "Bill To:", "L")
	p.doc.CellFormat(half, lineHeight, p.tr(inv.Business.BillToName), "", 1, "L", false, 0, "")
	p.font("", 10, ink)
	l1, l2 := invoice.SplitAddress(inv.Business.BillToAddress)
	p.line(half, l1, "L")
	if l2 != "" {
		p.line(half, l2, "L")
	}
	left := p.doc.GetY()

	right := []string{
		"Invoice #: " + inv.Number,
		"Date: " + inv.IssuedOn.Format(issueDate),
		"Period: " + inv.Range.Label(),
		"Due Date: " + inv.DueOn.Format(issueDate),
	}
	p.doc.SetXY(margin+half, top)
	p.font("B", 12, ink)
	p.line(half, "Invoice Details:", "R")
	p.font("", 10, ink)
	for _, s := range right {
		p.doc.SetX(margin + half)
		p.line(half, s, "R")
	}

	p.doc.SetXY(margin, max(left, p.doc.GetY())+8)
}

func (p *page) month(m invoice.MonthGroup, rate decimal.Decimal) {
	p.fit(3 * lineHeight * 2)

	p.doc.SetFillColor(band.r, band.g, band.b)
	p.font("B", 14, ink)
	p.doc.CellFormat(0, 8, p.tr(m.Label), "", 1, "L", true, 0, "")
	p.font("", 10, muted)
	summary := fmt.Sprintf("%d days • %s hours • %s", m.Count, m.Hours.StringFixed(2), money(m.Amount))
	p.doc.CellFormat(0, lineHeight, p.tr(summary), "", 1, "L", true, 0, "")
	p.doc.Ln(2)

	p.font("B", 10, ink)
	head := [6]string{"Date", "Time", "Description", "Hours", "Rate", "Amount"}
	for i, h := range head {
		align := "L"
		if i > 2 {
			align = "R"
		}
		p.cell(columns[i], lineHeight+1, h, align, true)
	}
	p.doc.Ln(lineHeight + 1)

	p.font("", 9, ink)
	for _, e := range m.Entries {
		desc := p.doc.SplitText(p.tr(e.Description), columns[2]-1)
		if len(desc) == 0 {
			desc = []string{""}
		}
		h := lineHeight * float64(len(desc))
		p.fit(h)

		x, y := margin, p.doc.GetY()
		cells := [6]string{
			e.Date,
			e.TimeIn + " - " + e.TimeOut,
			"",
			e.Hours.String(),
			money(rate),
			money(invoice.RowAmount(e.Hours, rate)),
		}
		for i, c := range cells {
			p.doc.SetXY(x, y)
			switch {
			case i == 2:
				for j, l := range desc {
					p.doc.SetXY(x, y+float64(j)*lineHeight)
					p.doc.CellFormat(columns[i], lineHeight, l, "", 0, "L", false, 0, "")
				}
			case i > 2:
				p.cell(columns[i], lineHeight, c, "R", false)
			default:
				p.cell(columns[i], lineHeight, c, "L", false)
			}
			x += columns[i]
		}

		p.doc.SetDrawColor(rule.r, rule.g, rule.b)
		p.doc.Line(margin, y+h, margin+p.width(), y+h)
		p.doc.SetXY(margin, y+h)
	}
	p.doc.Ln(8)
}

func (p *page) totals(s invoice.Summary) {
	const labelW, valueW = 40.0, 30.0
	x := margin + p.width() - labelW - valueW
	p.fit(4 * lineHeight)

	row := func(label, value string, size float64, c rgb) {
		p.doc.SetX(x)
		p.font("", size, muted)
		p.cell(labelW, lineHeight+1, label, "L", false)
		p.font("B", size, c)
		p.cell(valueW, lineHeight+1, value, "R", false)
		p.doc.Ln(lineHeight + 1)
	}
	row("Total Hours:", s.TotalHours.StringFixed(2), 10, ink)
	row("Hourly Rate:", money(s.HourlyRate), 10, ink)

	y := p.doc.GetY() + 2
	p.doc.SetDrawColor(accent.r, accent.g, accent.b)
	p.doc.SetLineWidth(0.6)
	p.doc.Line(x, y, x+labelW+valueW, y)
	p.doc.SetLineWidth(0.2)
	p.doc.SetY(y + 2)
	row("Total Amount:", money(s.TotalAmount), 12, green)
}

func (p *page) footer(dueDays int) {
	p.doc.SetY(-15)
	p.font("", 8, rgb{156, 163, 175})
	text := "Thank you for your business! Payment is due within " + strconv.Itoa(dueDays) + " days of invoice date."
	p.doc.CellFormat(0, 10, p.tr(text), "", 0, "C", false, 0, "")
}

// fit starts a new page when h more millimetres would run past the bottom
// margin, so a row is never split.
func (p *page) fit(h float64) {
	_, ph := p.doc.GetPageSize()
	_, _, _, bottom := p.doc.GetMargins()
	if p.doc.GetY()+h > ph-bottom {
		p.doc.AddPage()
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
