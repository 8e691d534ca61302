package http

import (
	"context"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"timesheet/internal/core"
	"timesheet/internal/invoice"
	applog "timesheet/internal/log"
	"timesheet/internal/middleware/ratelimit"
	"timesheet/internal/middleware/security"
	"timesheet/internal/middleware/trace"
	"timesheet/internal/services"
	"timesheet/internal/sheets"
	appweb "timesheet/web"
)

// EntriesAPI is the entry use case the handlers drive.
type EntriesAPI interface {
	Create(ctx context.Context, e core.Entry) (core.Entry, error)
	Recent(ctx context.Context) ([]core.Entry, error)
	Update(ctx context.Context, id string, e core.Entry) (core.Entry, error)
	Delete(ctx context.Context, id string) error
}

// InvoicesAPI previews and renders invoices.
type InvoicesAPI interface {
	Period(ctx context.Context, r core.DateRange) (services.Period, error)
	Generate(ctx context.Context, w io.Writer, s invoice.Summary, r core.DateRange) (invoice.Invoice, error)
	Rate() decimal.Decimal
}

// Deps wires a Server.
type Deps struct {
	Addr     string
	Entries  EntriesAPI
	Invoices InvoicesAPI
	Health   sheets.HealthChecker
	Backend  string
	// Settings reports which configuration keys are present, for /api/debug.
	Settings map[string]bool
	Logger   *applog.Logger

	RateLimitPerMinute int
	BlockSuspicious    bool
}

type Server struct {
	http.Server
	entries   EntriesAPI
	invoices  InvoicesAPI
	health    sheets.HealthChecker
	backend   string
	settings  map[string]bool
	templates *template.Template
	logger    *applog.Logger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	now       func() time.Time
}

func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	rl := ratelimit.DefaultConfig()
	if d.RateLimitPerMinute > 0 {
		rl.RequestsPerMinute = d.RateLimitPerMinute
	}

	mux := http.NewServeMux()
	s := &Server{
		entries:  d.Entries,
		invoices: d.Invoices,
		health:   d.Health,
		backend:  d.Backend,
		settings: d.Settings,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(rl),
		detector: security.NewDetector(d.BlockSuspicious),
		now:      time.Now,
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /invoices", s.handleInvoicesPage)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/time-entries", s.handleListEntries)
	mux.HandleFunc("POST /api/time-entries", s.handleCreateEntry)
	mux.HandleFunc("PUT /api/time-entries/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /api/time-entries/{id}", s.handleDeleteEntry)

	mux.Handle("GET /api/invoices/entries", security.NoStore(http.HandlerFunc(s.handleInvoiceEntries)))
	mux.Handle("POST /api/invoices/generate", security.NoStore(http.HandlerFunc(s.handleGenerateInvoice)))

	mux.HandleFunc("GET /api/debug", s.handleDebug)
	mux.HandleFunc("GET /api/test-connection", s.handleTestConnection)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded", applog.FieldClientIP, s.detector.ExtractClientIP(r), applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, msgRateLimited, "").Write(w)
	})

	s.Handler = s.tracer.Middleware(s.detector.Middleware(headers.Middleware(limit(mux))))
	s.Addr = d.Addr
	s.ReadHeaderTimeout = 10 * time.Second
	s.ReadTimeout = 30 * time.Second
	s.WriteTimeout = 60 * time.Second
	s.IdleTimeout = 120 * time.Second
	return s
}

// Shutdown stops background workers, then the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	m := s.tracer.GetMetrics()
	sec := s.detector.GetMetrics()
	s.logger.Info("HTTP server shutting down",
		"requests", m.TotalRequests,
		"avg_response", m.AverageResponseTime,
		"suspicious", sec.SuspiciousRequests,
		"blocked", sec.BlockedRequests,
		"rate_limited", s.limiter.GetMetrics().TotalHits)
	return s.Server.Shutdown(ctx)
}
