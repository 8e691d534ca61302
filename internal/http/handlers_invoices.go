package http

import (
	"bytes"
	"net/http"
	"strconv"

	"timesheet/internal/core"
	"timesheet/internal/invoice"
	applog "timesheet/internal/log"
)

const pdfContentType = "application/pdf"

type invoiceEntriesBody struct {
	Entries       []core.Entry         `json:"entries"`
	MonthlyGroups []invoice.MonthGroup `json:"monthlyGroups"`
	Summary       invoice.Summary      `json:"summary"`
}

// generateRequest is the body of POST /api/invoices/generate: the preview
// the browser already holds, echoed back for rendering.
type generateRequest struct {
	MonthlyGroups []invoice.MonthGroup `json:"monthlyGroups"`
	InvoiceData   invoice.Summary      `json:"invoiceData"`
	DateRange     core.DateRange       `json:"dateRange"`
}

func (s *Server) handleInvoiceEntries(w http.ResponseWriter, r *http.Request) {
	period, err := s.invoices.Period(r.Context(), parseRange(r.URL.Query()))
	if err != nil {
		serviceError(r, err, "Failed to fetch invoice entries", applog.ComponentInvoice, applog.OpSummary).Write(w)
		return
	}
	entries := period.Entries
	if entries == nil {
		entries = []core.Entry{}
	}
	groups := period.Summary.Months
	if groups == nil {
		groups = []invoice.MonthGroup{}
	}
	NewJSONResponse().Body(invoiceEntriesBody{
		Entries:       entries,
		MonthlyGroups: groups,
		Summary:       period.Summary,
	}).Write(w)
}

// handleGenerateInvoice renders the posted summary as a PDF. The document
// is buffered so a render failure still yields a JSON error.
func (s *Server) handleGenerateInvoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req generateRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		BadRequestError(msgBadBody).Write(w)
		return
	}
	summary := req.InvoiceData
	if len(req.MonthlyGroups) > 0 {
		summary.Months = req.MonthlyGroups
	}

	var buf bytes.Buffer
	inv, err := s.invoices.Generate(r.Context(), &buf, summary, req.DateRange)
	if err != nil {
		serviceError(r, err, "Failed to generate PDF invoice", applog.ComponentInvoice, applog.OpRender).Write(w)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogInvoiceGenerated(r.Context(), inv.Number, inv.Range.Label(), inv.Summary.TotalAmount.StringFixed(2))

	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.Filename(inv.Range)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
